package main

import (
	"podbrief/cmd/podbrief/cmd"

	// Import engines to register them
	_ "podbrief/internal/app/api/gemini"
	_ "podbrief/internal/app/api/openai/chat"
	_ "podbrief/internal/app/api/openai/whisper"
	_ "podbrief/internal/app/api/whisper_server"
)

// @title PodBrief API
// @version 1.0
// @description Upload audio, get a transcript and a summary, pay with credits.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cmd.Execute()
}
