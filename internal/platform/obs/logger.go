package obs

import "go.uber.org/zap"

// NewLogger returns a development logger for "development" and a JSON
// production logger otherwise, named after the service.
func NewLogger(appEnv, name string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if appEnv == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
