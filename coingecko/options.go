// Copyright (c) 2025 BVK Chaitanya

package coingecko

import (
	"time"

	"golang.org/x/time/rate"
)

var (
	RestHostname = "api.coingecko.com"
)

type Options struct {
	// Hostname for the REST service endpoint.
	RestHostname string

	// Timeout to use for the HTTP requests.
	HttpClientTimeout time.Duration

	// Rate limit for api calls. Free tier allows roughly 30 calls per minute.
	RateLimit rate.Limit

	// Currency used when no explicit currency is requested.
	DefaultCurrency string
}

func (v *Options) setDefaults() {
	if v.RestHostname == "" {
		v.RestHostname = RestHostname
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 10 * time.Second
	}
	if v.RateLimit == 0 {
		v.RateLimit = rate.Limit(0.5)
	}
	if v.DefaultCurrency == "" {
		v.DefaultCurrency = "usd"
	}
}
