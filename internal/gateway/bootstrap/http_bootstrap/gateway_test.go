package http_bootstrap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/horockey/regclient/internal/gateway/bootstrap/http_bootstrap"
	"github.com/horockey/regclient/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "10.0.0.1:8085", want: "http://10.0.0.1:8085/resolve"},
		{in: "10.0.0.1:8085/", want: "http://10.0.0.1:8085/resolve"},
		{in: "http://boot.local/api", want: "http://boot.local/api/resolve"},
		{in: "https://boot.local/", want: "https://boot.local/resolve"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, http_bootstrap.ResolveURL(tt.in))
		})
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    model.DiscoveryEndpoint
		wantErr bool
	}{
		{
			name: "plain",
			body: "192.168.1.10:50055",
			want: model.DiscoveryEndpoint{Host: "192.168.1.10", Port: 50055, Valid: true},
		},
		{
			name: "trailing_newline_and_extra_lines",
			body: "192.168.1.10:50055\nignored\n",
			want: model.DiscoveryEndpoint{Host: "192.168.1.10", Port: 50055, Valid: true},
		},
		{name: "empty", body: "", wantErr: true},
		{name: "no_port", body: "192.168.1.10", wantErr: true},
		{name: "bad_port", body: "host:abc", wantErr: true},
		{name: "zero_port", body: "host:0", wantErr: true},
		{name: "empty_host", body: ":8080", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := http_bootstrap.ParseEndpoint(tt.body)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		want       model.DiscoveryEndpoint
		wantErr    bool
	}{
		{
			name:       "success",
			statusCode: http.StatusOK,
			body:       "10.0.0.2:50055\n",
			want:       model.DiscoveryEndpoint{Host: "10.0.0.2", Port: 50055, Valid: true},
		},
		{
			name:       "non_200",
			statusCode: http.StatusServiceUnavailable,
			body:       "later",
			wantErr:    true,
		},
		{
			name:       "garbage",
			statusCode: http.StatusOK,
			body:       "garbage",
			wantErr:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gw := http_bootstrap.New(time.Second, zerolog.Nop())
			got, err := gw.Lookup(context.Background(), strings.TrimPrefix(server.URL, "http://"))

			assert.Equal(t, "/resolve", gotPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
