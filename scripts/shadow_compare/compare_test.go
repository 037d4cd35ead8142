package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodiesEqualIgnoresEnvelopeAndIdentifiers(t *testing.T) {
	goBody := []byte(`{"data":{"id":"5b0c","name":"BSc","total_percentage":77.6,"years":[{"id":"y1","year_number":1,"grade":74.0}]},"meta":{"cache_hit":false}}`)
	legacyBody := []byte(`{"id":3,"name":"BSc","total_percentage":77.6000001,"created_at":"2024-01-01","years":[{"id":9,"year_number":1,"grade":74}]}`)
	assert.True(t, bodiesEqual(goBody, legacyBody))

	legacyBody = []byte(`{"id":3,"name":"BSc","total_percentage":77.5,"years":[{"id":9,"year_number":1,"grade":74}]}`)
	assert.False(t, bodiesEqual(goBody, legacyBody))
}

func TestCompareTarget(t *testing.T) {
	goSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"a","name":"BA History"}]}`))
	}))
	defer goSrv.Close()
	legacySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"BA History"}]`))
	}))
	defer legacySrv.Close()

	comp := compareTarget(http.DefaultClient, goSrv.URL, legacySrv.URL, target{Path: "course/archived"})
	assert.NoError(t, comp.Error)
	assert.True(t, comp.StatusMatch)
	assert.True(t, comp.BodyMatch)

	var out bytes.Buffer
	printReport(&out, []comparison{comp})
	assert.Contains(t, out.String(), "[OK]  course/archived")
}

func TestCompareTargetStatusMismatch(t *testing.T) {
	goSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer goSrv.Close()
	legacySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer legacySrv.Close()

	comp := compareTarget(http.DefaultClient, goSrv.URL, legacySrv.URL, target{Method: http.MethodGet, Path: "/course/current"})
	assert.False(t, comp.StatusMatch)
	assert.False(t, comp.BodyMatch)
}
