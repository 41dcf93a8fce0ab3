package main

import (
	"github.com/joho/godotenv"

	"vendorcover_backend/internal/app"
)

func main() {
	// .env опционален: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	app.Run()
}
