package auth

// Claims representa la identidad extraída del token: quién es y qué roles trae.
type Claims struct {
	UserID   string
	Username string
	Roles    []string
}
