package main

import (
	"fmt"
	"log"

	"github.com/pratyek/medical-amount-detection/internal/classifier"
	_ "github.com/pratyek/medical-amount-detection/internal/classifier/gemini"
	_ "github.com/pratyek/medical-amount-detection/internal/classifier/openai"
	"github.com/pratyek/medical-amount-detection/internal/config"
	"github.com/pratyek/medical-amount-detection/internal/extractor"
	"github.com/pratyek/medical-amount-detection/internal/guardrails"
	"github.com/pratyek/medical-amount-detection/internal/handler"
	"github.com/pratyek/medical-amount-detection/internal/metrics"
	"github.com/pratyek/medical-amount-detection/internal/ocr/noop"
	"github.com/pratyek/medical-amount-detection/internal/ocr/tesseract"
	"github.com/pratyek/medical-amount-detection/internal/pipeline"
	"github.com/pratyek/medical-amount-detection/internal/port"
	"github.com/pratyek/medical-amount-detection/internal/router"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The pipeline degrades to rule-based classification when no AI
	// provider is configured.
	var provider port.CompletionProvider
	if cfg.Classifier.AIEnabled {
		provider, err = classifier.NewProvider(&cfg.Classifier)
		if err != nil {
			return fmt.Errorf("failed to initialize completion provider: %w", err)
		}
	}

	var ocrEngine port.OCREngine
	switch cfg.OCR.Engine {
	case "tesseract":
		ocrEngine = tesseract.NewEngine()
	case "none":
		ocrEngine = noop.NewEngine()
	default:
		return fmt.Errorf("unknown ocr engine: %s", cfg.OCR.Engine)
	}

	m := metrics.NewMetrics()

	p := pipeline.New(cfg, pipeline.Deps{
		Extractor:    extractor.New(),
		Classifier:   classifier.NewEngine(&cfg.Classifier, cfg.Guardrails.ArithmeticTolerance, provider),
		InputGate:    guardrails.NewInputGate(&cfg.Guardrails),
		OutputGate:   guardrails.NewOutputGate(&cfg.Guardrails),
		AISafetyGate: guardrails.NewAISafetyGate(),
		OCR:          ocrEngine,
		Metrics:      m,
	})

	amountsH := handler.NewAmountsHandler(p, cfg.Guardrails.MaxFileSizeBytes())
	healthH := handler.NewHealthHandler(ocrEngine)

	r := router.Setup(cfg, amountsH, healthH, m)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
