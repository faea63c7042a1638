package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"

	"github.com/quillhub/quillhub/client/api"
	"github.com/quillhub/quillhub/client/config"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

func jsonOutput() bool {
	return config.GetString("output.format") == "json"
}

// printJSON renders any value as indented JSON to stdout
func printJSON(v interface{}) error {
	out, err := jsoniter.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printSuccess(format string, args ...interface{}) {
	green.Printf(format+"\n", args...)
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func renderPost(p *api.Post) {
	author := "unknown"
	if p.Account != nil {
		author = "@" + p.Account.Username
	}
	cyan.Printf("%s", author)
	faint.Printf("  %s  %s\n", relativeTime(p.CreatedAt), p.Link)
	fmt.Println(indent(p.Content, "  "))
	for _, pic := range p.Pictures {
		faint.Printf("  [image] %s\n", pic)
	}
	liked := " "
	if p.IsLiked {
		liked = "*"
	}
	faint.Printf("  %s%d likes  %d comments\n", liked, p.LikeCount, p.CommentCount)
	if p.LatestComment != nil && p.LatestComment.Account != nil {
		faint.Printf("  latest: @%s: %s\n",
			p.LatestComment.Account.Username, truncate(p.LatestComment.Content, 60))
	}
}

func renderComment(c *api.Comment) {
	author := "unknown"
	if c.Account != nil {
		author = "@" + c.Account.Username
	}
	prefix := ""
	if c.ParentCommentID != nil {
		prefix = "  "
	}
	cyan.Printf("%s%s", prefix, author)
	if c.ReplyAccount != nil {
		faint.Printf(" > @%s", c.ReplyAccount.Username)
	}
	faint.Printf("  %s  %s\n", relativeTime(c.CreatedAt), c.ID)
	if c.IsDeleted {
		faint.Printf("%s  [deleted]\n", prefix)
	} else {
		fmt.Println(indent(c.Content, prefix+"  "))
		for _, pic := range c.Pictures {
			faint.Printf("%s  [image] %s\n", prefix, pic)
		}
	}
	liked := " "
	if c.IsLiked {
		liked = "*"
	}
	faint.Printf("%s  %s%d likes  %d replies\n", prefix, liked, c.LikeCount, c.ReplyCount)
}

func renderProfile(p *api.Profile) {
	cyan.Printf("@%s", p.Username)
	if p.Name != "" {
		fmt.Printf("  (%s)", p.Name)
	}
	if p.IsOwner {
		yellow.Print("  [you]")
	} else if p.IsFollowing {
		green.Print("  [following]")
	}
	fmt.Println()
	if p.Bio != "" {
		fmt.Println(indent(p.Bio, "  "))
	}
	faint.Printf("  %d posts  %d followers  %d following  joined %s\n",
		p.PostCount, p.FollowerCount, p.FollowingCount, p.CreatedAt.Format("Jan 2006"))
	if p.AvatarLink != "" {
		faint.Printf("  avatar: %s\n", p.AvatarLink)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
