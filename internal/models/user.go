package models

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Account struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}
