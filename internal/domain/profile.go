package domain

// ExternalProfile is the public profile a new account is bound to.
// Bio is the free-text "description" that must carry the verification code.
type ExternalProfile struct {
	Ref         string
	Username    string
	DisplayName string
	Bio         string
	PictureURL  string
}
