// Command chatcli is an interactive terminal client for the dialog engine,
// driving the same in-process widget binding an embedded chat widget uses.
// Booking confirmations include a WhatsApp deep link, which chatcli also
// renders as a scannable QR code.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mdp/qrterminal/v3"

	"github.com/VertexInfotech/SupportFlow/internal/flow"
	"github.com/VertexInfotech/SupportFlow/internal/models"
	"github.com/VertexInfotech/SupportFlow/internal/widget"
)

func main() {
	lang := flag.String("lang", string(models.LanguageEnglish), "conversation language: english, hindi, or marathi")
	number := flag.String("whatsapp-number", flow.DefaultWhatsAppNumber, "company WhatsApp number for booking deep links")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	engine, err := flow.New(flow.WithWhatsAppNumber(*number))
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	w := widget.Open(engine, models.Language(*lang))
	defer w.Close()
	printPayload(w.Payload())

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "/quit", "/exit":
			return
		case "/english", "/hindi", "/marathi":
			payload, err := w.SetLanguage(models.Language(strings.TrimPrefix(line, "/")))
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return
			}
			printPayload(payload)
		default:
			payload, err := w.Send(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return
			}
			printPayload(payload)
		}
		fmt.Print("> ")
	}
}

func printPayload(p models.ResponsePayload) {
	fmt.Println()
	fmt.Println(p.Text)
	for _, opt := range p.Options {
		fmt.Printf("  %s. %s\n", opt.ID, opt.Label)
	}
	if link := deepLink(p.Text); link != "" {
		fmt.Println()
		qrterminal.GenerateHalfBlock(link, qrterminal.L, os.Stdout)
	}
	fmt.Println()
}

// deepLink extracts a wa.me link from a confirmation payload, if present.
func deepLink(text string) string {
	for _, field := range strings.Fields(text) {
		if strings.HasPrefix(field, flow.WhatsAppBaseURL) {
			return field
		}
	}
	return ""
}
