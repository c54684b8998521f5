package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"

	"ewintr.nl/treats/extract"
	"ewintr.nl/treats/fetcher"
	"ewintr.nl/treats/handler"
	"ewintr.nl/treats/notify"
	"ewintr.nl/treats/pipeline"
	"ewintr.nl/treats/publish"
	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	instagram := fetcher.NewInstagram(logger)

	openAIClient := openai.NewClient(getParam("OPENAI_API_KEY", ""))
	extractor := extract.NewOpenAI(openAIClient, logger)

	datocms := publish.NewDatoCMS(
		getParam("DATOCMS_API_TOKEN", ""),
		getParam("DATOCMS_ITEM_TYPE", "YcJscRUJQKeioYp5KnB8Pg"),
		logger,
	)

	mailPort, err := strconv.Atoi(getParam("MAIL_PORT", "465"))
	if err != nil {
		logger.Error("invalid mail port", slog.String("error", err.Error()))
		os.Exit(1)
	}
	mailer := notify.NewMailer(notify.MailerConfig{
		Host:     getParam("MAIL_HOST", ""),
		Port:     mailPort,
		User:     getParam("MAIL_USER", ""),
		Password: getParam("MAIL_PASSWORD", ""),
		From:     getParam("FROM_MAIL", ""),
		To:       getParam("TO_MAIL", ""),
	})

	recipePipeline := pipeline.New(instagram, extractor, datocms, mailer, logger)

	enabled := getParam("ENABLE_SERVER_API", "true") == "true"
	extractAPI := handler.NewExtractAPI(recipePipeline, enabled, logger)
	videoAPI := handler.NewVideoAPI(recipePipeline, enabled, logger)

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		logger.Error("invalid port", slog.String("error", err.Error()))
		os.Exit(1)
	}
	go http.ListenAndServe(fmt.Sprintf(":%d", port), handler.NewServer(extractAPI, videoAPI, logger))
	logger.Info("http server started", slog.Int("port", port))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	logger.Info("service stopped")
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
