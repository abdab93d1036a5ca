package service

import "github.com/aussiebroadwan/alumnet/pkg/otelx"

var tracer = otelx.Tracer("github.com/aussiebroadwan/alumnet/internal/membership/service")
