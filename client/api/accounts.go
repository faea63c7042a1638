package api

import (
	"strconv"

	"github.com/quillhub/quillhub/client/transport"
)

// GetMyProfile fetches the signed-in account's profile
func GetMyProfile() (*Profile, error) {
	var profile Profile
	err := transport.Do(transport.Request{
		Method: "GET",
		Path:   "/api/accounts/profile/me",
		Result: &profile,
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileByUsername fetches a profile by username
func GetProfileByUsername(username string) (*Profile, error) {
	var profile Profile
	err := transport.Do(transport.Request{
		Method: "GET",
		Path:   "/api/accounts/profile/username/" + username,
		Result: &profile,
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SearchAccounts lists accounts matching a name, cursor-paginated
func SearchAccounts(name, cursor string, pageSize int) (*Page[Profile], error) {
	var page Page[Profile]
	err := transport.Do(transport.Request{
		Method: "GET",
		Path:   "/api/accounts",
		Query: map[string]string{
			"name":     name,
			"cursor":   cursor,
			"pageSize": strconv.Itoa(pageSize),
		},
		Result: &page,
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateProfile patches profile fields; nil pointers are left unchanged
func UpdateProfile(updates map[string]interface{}) (*Profile, error) {
	var profile Profile
	err := transport.Do(transport.Request{
		Method: "PUT",
		Path:   "/api/accounts/profile/me",
		Body:   updates,
		Result: &profile,
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword verifies the old password and sets a new one
func ChangePassword(oldPassword, newPassword string) error {
	return transport.Do(transport.Request{
		Method: "PUT",
		Path:   "/api/accounts/profile/change-password",
		Body: map[string]string{
			"oldPassword": oldPassword,
			"newPassword": newPassword,
		},
	})
}

// ChangeAvatar re-links an uploaded picture as the avatar
func ChangeAvatar(link string) (*Profile, error) {
	var profile Profile
	err := transport.Do(transport.Request{
		Method: "PUT",
		Path:   "/api/accounts/profile/change-avatar",
		Body:   map[string]string{"link": link},
		Result: &profile,
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SelfRemove schedules the signed-in account for removal
func SelfRemove() error {
	return transport.Do(transport.Request{
		Method: "POST",
		Path:   "/api/accounts/profile/self-remove",
	})
}

// Follow follows an account and returns its follower count
func Follow(accountID string) (int64, error) {
	return followerMutation("POST", "/api/accounts/"+accountID+"/follow")
}

// Unfollow unfollows an account and returns its follower count
func Unfollow(accountID string) (int64, error) {
	return followerMutation("DELETE", "/api/accounts/"+accountID+"/unfollow")
}

func followerMutation(method, path string) (int64, error) {
	var data struct {
		FollowerCount int64 `json:"followerCount"`
	}
	err := transport.Do(transport.Request{
		Method: method,
		Path:   path,
		Result: &data,
	})
	return data.FollowerCount, err
}
