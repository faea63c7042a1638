package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/quillhub/quillhub/internal/models"
)

// Service sends account emails via AWS SES.
type Service struct {
	client    *ses.Client
	fromEmail string
	fromName  string
	baseURL   string
}

// NewService creates an email service backed by AWS SES.
func NewService(region, fromEmail, fromName, baseURL string) (*Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
	}, nil
}

// SendVerificationCode emails a verification code for the given purpose.
// Codes expire 15 minutes after issue.
func (s *Service) SendVerificationCode(to, code string, purpose models.VerificationType) error {
	var subject, intro string
	switch purpose {
	case models.VerifyForgotPassword:
		subject = "Reset Your QuillHub Password"
		intro = "You requested to reset your QuillHub password. Enter the code below to continue."
	case models.VerifyChangePassword:
		subject = "Confirm Your QuillHub Password Change"
		intro = "Use the code below to confirm your password change."
	default:
		subject = "Confirm Your QuillHub Account"
		intro = "Welcome to QuillHub! Enter the code below to activate your account."
	}

	htmlBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.code { font-size: 32px; letter-spacing: 8px; font-weight: bold; padding: 16px 24px; background-color: #f4f4f7; border-radius: 6px; display: inline-block; margin: 20px 0; }
			</style>
		</head>
		<body>
			<div class="container">
				<h1>%s</h1>
				<p>%s</p>
				<div class="code">%s</div>
				<p>This code expires in 15 minutes.</p>
				<p>If you didn't request this, you can safely ignore this email.</p>
				<hr>
				<p style="color: #999; font-size: 12px;">This is an automated message from QuillHub.</p>
			</div>
		</body>
		</html>
	`, subject, intro, code)

	textBody := fmt.Sprintf(`%s

%s

Your code: %s

This code expires in 15 minutes.

If you didn't request this, you can safely ignore this email.

This is an automated message from QuillHub.
`, subject, intro, code)

	return s.send(to, subject, htmlBody, textBody)
}

// SendRemovalNotice tells an account owner when their account is scheduled
// for permanent removal.
func (s *Service) SendRemovalNotice(to string, removeAt time.Time) error {
	subject := "Your QuillHub Account Is Scheduled for Deletion"
	when := removeAt.UTC().Format("January 2, 2006")

	htmlBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
			</style>
		</head>
		<body>
			<div class="container">
				<h1>Account Deletion Scheduled</h1>
				<p>Your QuillHub account and all of its content will be permanently removed on <strong>%s</strong>.</p>
				<p>Logging back in before that date cancels the removal.</p>
				<hr>
				<p style="color: #999; font-size: 12px;">This is an automated message from QuillHub.</p>
			</div>
		</body>
		</html>
	`, when)

	textBody := fmt.Sprintf(`Account Deletion Scheduled

Your QuillHub account and all of its content will be permanently removed on %s.

Logging back in before that date cancels the removal.

This is an automated message from QuillHub.
`, when)

	return s.send(to, subject, htmlBody, textBody)
}

func (s *Service) send(to, subject, htmlBody, textBody string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
