package inputsetter

import (
	"strconv"

	"github.com/nighthawk/adaptive-load/internal/config"
	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/registry"
	"github.com/nighthawk/adaptive-load/internal/status"
)

func init() {
	registry.RegisterInputVariableSetterFactory(httpHeaderFactory{})
}

// HTTPHeaderConfig is the opaque config for nighthawk.http_header.
type HTTPHeaderConfig struct {
	HeaderName string `yaml:"header_name" validate:"required"`
}

// HTTPHeader sets a named header on the traffic spec to the
// recommendation's decimal string representation. Declared (but never
// implemented) in the source this controller was distilled from as
// HttpHeaderInputVariableSetter; supplied here as a second reference
// setter alongside RPS.
type HTTPHeader struct {
	headerName string
}

// Set implements registry.InputVariableSetter. Unlike RPS, the header
// setter has no intrinsic range restriction: any finite value is valid.
func (h HTTPHeader) Set(spec *model.TrafficSpec, value float64) *status.Status {
	if spec.Headers == nil {
		spec.Headers = map[string]string{}
	}
	spec.Headers[h.headerName] = strconv.FormatFloat(value, 'f', -1, 64)
	return status.Success()
}

type httpHeaderFactory struct{}

func (httpHeaderFactory) Name() string             { return "nighthawk.http_header" }
func (httpHeaderFactory) EmptyConfig() interface{} { return &HTTPHeaderConfig{} }

func (httpHeaderFactory) ValidateConfig(raw map[string]interface{}) *status.Status {
	var cfg HTTPHeaderConfig
	if err := config.Decode(raw, &cfg); err != nil {
		return status.New(status.InvalidArgument, err.Error())
	}
	return status.Success()
}

func (httpHeaderFactory) Create(raw map[string]interface{}) (registry.InputVariableSetter, *status.Status) {
	var cfg HTTPHeaderConfig
	if err := config.Decode(raw, &cfg); err != nil {
		return nil, status.New(status.InvalidArgument, err.Error())
	}
	return HTTPHeader{headerName: cfg.HeaderName}, status.Success()
}
