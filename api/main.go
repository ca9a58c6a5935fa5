package main

import (
	"github.com/atelierhq/atelier/api/cmd/atelier"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	atelier.Execute()
}
