package credentials

// SignupInput is the signup form. Binding tags are enforced by gin's
// validator before the service sees the values.
type SignupInput struct {
	Name     string `form:"name" binding:"required,max=50"`
	Username string `form:"username" binding:"required,alphanum,max=20"`
	Password string `form:"password" binding:"required,max=20"`
}

// LoginInput is the login form. Only the username is validated; a bad
// password simply fails verification.
type LoginInput struct {
	Username string `form:"username" binding:"required,max=20"`
	Password string `form:"password"`
}
