package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type WelcomeMailData struct {
	FirstName string `json:"firstName"`
	Login     string `json:"login"`
}

type ResetPasswordMailData struct {
	FirstName  string `json:"firstName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type TaskAssignedMailData struct {
	FirstName   string `json:"firstName"`
	TaskTitle   string `json:"taskTitle"`
	AuthorLogin string `json:"authorLogin"`
}
