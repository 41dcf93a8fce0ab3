package email

// Email представляет структуру email сообщения
type Email struct {
	To      []string
	Subject string
	Body    string
}

// SMTPConfig - настройки SMTP провайдера
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}
