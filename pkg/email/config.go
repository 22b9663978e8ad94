package email

// Config selects and configures the mail transport. Postmark is used when
// the server token is set, otherwise DevDir (when set) receives rendered
// messages as files, otherwise email is disabled.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"EMAIL_SENDER" envDefault:"notifications@localhost.localdomain"`
	SupportEmail         string `env:"EMAIL_SUPPORT"`
	DevDir               string `env:"EMAIL_DEV_DIR"`
}
