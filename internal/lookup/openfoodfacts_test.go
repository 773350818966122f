package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenFoodFacts_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v0/product/340093.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":1,"product":{"product_name":"Doliprane 1000mg","brands":"Sanofi, Doliprane","categories":"Painkillers, Tablets"}}`))
		case "/api/v0/product/000000.json":
			w.Write([]byte(`{"status":0}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	off := NewOpenFoodFacts(srv.URL, time.Second, zap.NewNop())
	ctx := context.Background()

	meta, err := off.Lookup(ctx, "340093")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "340093", meta.Barcode)
	assert.Equal(t, "Doliprane 1000mg", meta.Name)
	assert.Equal(t, "Sanofi", meta.Brand) // 逗号列表取第一项
	assert.Equal(t, "Painkillers", meta.Category)

	// status=0：查不到不是错误
	meta, err = off.Lookup(ctx, "000000")
	require.NoError(t, err)
	assert.Nil(t, meta)

	// 404 同样当查不到
	meta, err = off.Lookup(ctx, "999999")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestOpenFoodFacts_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	off := NewOpenFoodFacts(srv.URL, time.Second, zap.NewNop())
	meta, err := off.Lookup(context.Background(), "340093")
	assert.Error(t, err)
	assert.Nil(t, meta)
}
