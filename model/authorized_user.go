package model

// AuthorizedUser stores the OAuth token pair of a Discord account that
// completed the authorization flow. Both tokens are overwritten together on
// re-authorization; only the access token changes on refresh.
type AuthorizedUser struct {
	UserID       string `gorm:"primaryKey;size:32"`
	AccessToken  string `gorm:"size:512;not null"`
	RefreshToken string `gorm:"size:512;not null"`
}

func (AuthorizedUser) TableName() string {
	return "users"
}
