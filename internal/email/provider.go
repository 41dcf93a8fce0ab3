package email

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет email сообщение
	Send(email *Email) error

	// Close закрывает соединение с провайдером
	Close() error
}

// NoopProvider - заглушка, когда email отключен в конфигурации
type NoopProvider struct{}

func (p *NoopProvider) Send(email *Email) error { return nil }
func (p *NoopProvider) Close() error            { return nil }
