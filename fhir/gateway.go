// Package fhir is a thin authenticated-request helper for FHIR queries. It
// never interprets HTTP status codes: every response, 4xx and 5xx included,
// comes back to the caller as status plus body.
package fhir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/udap-tools/udap-client-app/udap"
)

const requestTimeout = 30 * time.Second

// Result is a raw FHIR server response.
type Result struct {
	StatusCode int
	Body       string
}

type Gateway struct {
	http *http.Client
}

func NewGateway() *Gateway {
	return &Gateway{
		http: &http.Client{Timeout: requestTimeout},
	}
}

// FetchResource fetches a resource for a patient. A Patient resource is read
// directly by id; any other resource type is searched by patient reference.
func (g *Gateway) FetchResource(ctx context.Context, baseURL, resource, patientID, token string) (*Result, error) {
	var queryURL string
	if resource == "Patient" {
		queryURL = fmt.Sprintf("%s/Patient/%s", baseURL, url.PathEscape(patientID))
	} else {
		queryURL = fmt.Sprintf("%s/%s?patient=%s", baseURL, url.PathEscape(resource), url.QueryEscape(patientID))
	}
	return g.get(ctx, queryURL, token)
}

// PatientSearch are the demographic search parameters.
type PatientSearch struct {
	BirthDate  string
	FamilyName string
	GivenName  string
}

// SearchPatient searches Patient by birth date and name. The birth date is
// normalized to YYYY-MM-DD before it reaches the query string.
func (g *Gateway) SearchPatient(ctx context.Context, baseURL string, search PatientSearch, token string) (*Result, error) {
	birthDate, err := NormalizeDate(search.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("[SearchPatient] %w", err)
	}

	query := url.Values{
		"birthdate": {birthDate},
		"family":    {search.FamilyName},
		"given":     {search.GivenName},
	}
	return g.get(ctx, baseURL+"/Patient?"+query.Encode(), token)
}

// MatchPatient POSTs a $match operation with the fixed Parameters envelope.
func (g *Gateway) MatchPatient(ctx context.Context, baseURL string, query MatchQuery, token string) (*Result, error) {
	envelope, err := query.Parameters()
	if err != nil {
		return nil, fmt.Errorf("[MatchPatient] %w", err)
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("[MatchPatient] encoding parameters: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/Patient/$match", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("[MatchPatient] building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, token)
}

func (g *Gateway) get(ctx context.Context, queryURL, token string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("[get] building request: %w", err)
	}
	return g.do(req, token)
}

func (g *Gateway) do(req *http.Request, token string) (*Result, error) {
	req.Header.Set("Authorization", "Bearer "+token)

	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("invoking FHIR URL")
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[do] %s: %w: %w", req.URL, udap.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("[do] reading response: %w", err)
	}

	log.Debug().Int("status", resp.StatusCode).Msg("FHIR response")
	return &Result{StatusCode: resp.StatusCode, Body: string(body)}, nil
}
