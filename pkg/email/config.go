package email

// Config holds email service configuration.
// PostmarkServerToken and PostmarkAccountToken are optional to support
// development environments where email sending is routed to the DevSender.
// SenderEmail establishes the sender identity for all outbound mail;
// ContactEmail receives contact form submissions.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	ContactEmail         string `env:"CONTACT_EMAIL,required"`
}
