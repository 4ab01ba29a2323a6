package httpapi

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

func proxyErrorHandler(logger zerolog.Logger, upstream string) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error().Err(err).Str("upstream", upstream).Str("path", r.URL.Path).Msg("proxy_error")
		respondDetail(w, http.StatusBadGateway, "%s upstream unavailable", upstream)
	}
}

func rewriteProxy(target *url.URL, logger zerolog.Logger, name string, rewrite func(*http.Request)) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	base := proxy.Director
	proxy.Director = func(req *http.Request) {
		base(req)
		req.Host = target.Host
		rewrite(req)
	}
	proxy.ErrorHandler = proxyErrorHandler(logger, name)
	return proxy
}

// NewChatwootProxy repassa /chatwoot/* para a API do Chatwoot, reescrevendo
// para /api/v1/accounts/{accountID}/* e trocando a credencial do chamador
// pelo token da conta.
func NewChatwootProxy(baseURL, token, accountID string, logger zerolog.Logger) (http.Handler, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	prefix := "/api/v1/accounts/" + accountID
	return rewriteProxy(target, logger, "chatwoot", func(req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, target.Path)
		rest = strings.TrimPrefix(rest, "/chatwoot")
		req.URL.Path = target.Path + prefix + rest
		req.Header.Del("Authorization")
		req.Header.Set("api_access_token", token)
	}), nil
}

// NewN8NProxy repassa /n8n/* para a API do n8n em /api/v1/*.
func NewN8NProxy(baseURL, apiKey string, logger zerolog.Logger) (http.Handler, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return rewriteProxy(target, logger, "n8n", func(req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, target.Path)
		rest = strings.TrimPrefix(rest, "/n8n")
		req.URL.Path = target.Path + "/api/v1" + rest
		req.Header.Del("Authorization")
		req.Header.Set("X-N8N-API-KEY", apiKey)
	}), nil
}

// NewLLMProxy repassa /v1/* para um upstream compatível com OpenAI. O
// chamador precisa apresentar um bearer qualquer; a chave real do upstream
// é substituída do lado do servidor.
func NewLLMProxy(baseURL, upstreamKey string, logger zerolog.Logger) (http.Handler, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	proxy := rewriteProxy(target, logger, "llm", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+upstreamKey)
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		scheme, _, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			respondDetail(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		proxy.ServeHTTP(w, r)
	}), nil
}
