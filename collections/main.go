package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"gitlab.connectwisedev.com/product-scanner/pkg/app"
)

var application *app.App

func init() {
	var err error
	application, err = app.Bootstrap(context.Background(), "collections")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
}

func main() {
	defer application.Close()
	lambda.Start(application.Drained(application.Handler.Collections))
}
