package clightning

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

type Option struct {
	ConnTimeout  time.Duration
	ReadTimeOut  time.Duration
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RetryMax is 0 by default, every call is a single attempt.
	RetryMax  int
	TLSConfig *tls.Config
}

// LogWrapper adapts a zap logger to the leveled logger of retryablehttp.
type LogWrapper struct {
	logger *zap.Logger
}

func (l *LogWrapper) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, keysAndValues...)
}

func (l *LogWrapper) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Infow(msg, keysAndValues...)
}

func (l *LogWrapper) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l *LogWrapper) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Warnw(msg, keysAndValues...)
}

func (a *api) WithLogger(logger *zap.Logger) *api {
	a.logger = logger
	a.httpClient.Logger = &LogWrapper{logger: logger}
	return a
}

func (a *api) WithOption(option *Option) *api {
	setHttpClientOption(a.httpClient, option)
	return a
}

type (
	InterceptorFunc    func(RequestHandlerFunc) RequestHandlerFunc
	RequestHandlerFunc func(*http.Request) (*http.Response, error)
)

func (a *api) WithInterceptors(is ...InterceptorFunc) *api {
	a.interceptors = is
	return a
}

func defaultOption() *Option {
	return &Option{
		ConnTimeout:  10 * time.Second,
		ReadTimeOut:  2 * time.Minute,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 3 * time.Second,
		RetryMax:     0,
	}
}

func defaultHttpClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.HTTPClient = &http.Client{}
	c.Backoff = retryablehttp.LinearJitterBackoff // use jitter
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = nil // disable default logger
	c.CheckRetry = checkRetry
	setHttpClientOption(c, defaultOption())
	return c
}

func checkRetry(ctx context.Context, res *http.Response, err error) (bool, error) {
	doRetry, err := retryablehttp.ErrorPropagatedRetryPolicy(ctx, res, err)
	if doRetry && res != nil {
		// if a response is received, retry is terminated
		return false, nil
	}
	return doRetry, err
}

func setHttpClientOption(c *retryablehttp.Client, o *Option) {
	if o.ConnTimeout > 0 || o.TLSConfig != nil {
		c.HTTPClient.Transport = transportWithTimeout(o.ConnTimeout, o.TLSConfig)
	}
	if o.ReadTimeOut > 0 {
		c.HTTPClient.Timeout = o.ReadTimeOut
	}
	if o.RetryWaitMin > 0 {
		c.RetryWaitMin = o.RetryWaitMin
	}
	if o.RetryWaitMax > 0 {
		c.RetryWaitMax = o.RetryWaitMax
	}
	c.RetryMax = o.RetryMax
}

func transportWithTimeout(d time.Duration, tlsConfig *tls.Config) *http.Transport {
	// clone default transport
	dtp, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil
	}
	tp := dtp.Clone()
	if d > 0 {
		dial := &net.Dialer{Timeout: d, KeepAlive: 30 * time.Second}
		tp.DialContext = (dial).DialContext
	}
	if tlsConfig != nil {
		tp.TLSClientConfig = tlsConfig
	}
	return tp
}
