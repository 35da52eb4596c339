package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tourism-system/internal/config"
	"tourism-system/internal/geodata/nominatim"
	"tourism-system/internal/geodata/openmeteo"
	"tourism-system/internal/geodata/overpass"
	"tourism-system/internal/services/intent"
	"tourism-system/internal/services/llm"
	"tourism-system/internal/services/query"
	"tourism-system/internal/translate"
)

func main() {
	var (
		language = flag.String("lang", "en", "Target language code for responses")
		verbose  = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if *language != "" && !translate.IsSupported(*language) {
		fmt.Fprintf(os.Stderr, "Unsupported language code %q\n", *language)
		os.Exit(1)
	}

	var llmClient llm.Client
	if cfg.OpenAI.APIKey != "" {
		client, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		if err == nil {
			llmClient = client
		}
	}

	extractor := intent.NewExtractor(llmClient)
	service := query.NewService(
		nominatim.NewClient(cfg.Nominatim.BaseURL, cfg.Nominatim.UserAgent, cfg.Nominatim.Timeout),
		openmeteo.NewClient(cfg.OpenMeteo.BaseURL, cfg.OpenMeteo.Timeout),
		overpass.NewClient(cfg.Overpass.BaseURL, cfg.Overpass.Timeout),
		overpass.MaxAttractions,
	)
	composer := query.NewComposer(translate.NewClient(cfg.Translate.BaseURL, cfg.Translate.FallbackURL, cfg.Translate.Timeout))

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Tourism Query System")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("\nEnter a place you want to visit, and I'll help you plan your trip!")
	fmt.Println("You can ask about weather, places to visit, or both.")
	fmt.Println("Type 'quit' or 'exit' to stop.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" || input == "q" {
			break
		}

		ctx := context.Background()
		it := extractor.Extract(ctx, input)
		result, err := service.HandleQuery(ctx, it)
		if err != nil {
			fmt.Println("\nAgent: I couldn't identify a place name in your message. Please specify a location.")
			continue
		}
		fmt.Printf("\nAgent: %s\n", composer.Compose(ctx, result, *language))
	}

	fmt.Println("\nThank you for using the Tourism System. Have a great trip!")
}
