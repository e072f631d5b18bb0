package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/nomination-intake/cmd/mainconfig"
	"github.com/wolfman30/nomination-intake/internal/app/bootstrap"
	appconfig "github.com/wolfman30/nomination-intake/internal/config"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	app, err := bootstrap.BuildApp(context.Background(), cfg, bootstrap.Options{
		AWSConfig: awsCfg,
		Registry:  prometheus.NewRegistry(),
		Logger:    logger,
	})
	if err != nil {
		panic(err)
	}

	lambda.Start(newProxy(app.Handler).ProxyWithContext)
}

// newProxy adapts API Gateway HTTP API events to the router.
func newProxy(h http.Handler) *httpadapter.HandlerAdapterV2 {
	return httpadapter.NewV2(withHealthAlias(h))
}

// withHealthAlias serves the gateway's /_health check from /health.
func withHealthAlias(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/_health" {
			r.URL.Path = "/health"
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}
