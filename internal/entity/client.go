package entity

// ClientIdentity is the caller an access token was issued to.
type ClientIdentity struct {
	ID   string
	Name string
}
