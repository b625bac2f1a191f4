package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PatentsClient covers the patent resource endpoints.
type PatentsClient struct {
	client *Client
}

// Patent is the API representation of a patent record.
type Patent struct {
	ID                 string     `json:"id"`
	PatentNumber       string     `json:"patent_number"`
	Title              string     `json:"title"`
	Abstract           string     `json:"abstract,omitempty"`
	Type               string     `json:"type"`
	Assignee           string     `json:"assignee,omitempty"`
	Inventors          []string   `json:"inventors,omitempty"`
	FilingDate         *time.Time `json:"filing_date,omitempty"`
	GrantDate          *time.Time `json:"grant_date,omitempty"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
	PTADays            int        `json:"pta_days,omitempty"`
	PTEDays            int        `json:"pte_days,omitempty"`
	TerminalDisclaimer *time.Time `json:"terminal_disclaimer,omitempty"`
	Status             string     `json:"status"`
	CPCCodes           []string   `json:"cpc_codes,omitempty"`
	CitationCount      int        `json:"citation_count"`
}

// IngestRequest is the payload for Ingest.  Dates are strings in any
// accepted layout (YYYY-MM-DD preferred).
type IngestRequest struct {
	PatentNumber       string   `json:"patent_number"`
	Title              string   `json:"title"`
	Abstract           string   `json:"abstract,omitempty"`
	ClaimsText         string   `json:"claims_text,omitempty"`
	Type               string   `json:"patent_type,omitempty"`
	Assignee           string   `json:"assignee,omitempty"`
	Inventors          []string `json:"inventors,omitempty"`
	FilingDate         string   `json:"filing_date,omitempty"`
	GrantDate          string   `json:"grant_date,omitempty"`
	PublicationDate    string   `json:"publication_date,omitempty"`
	PTADays            int      `json:"pta_days,omitempty"`
	PTEDays            int      `json:"pte_days,omitempty"`
	TerminalDisclaimer string   `json:"terminal_disclaimer,omitempty"`
	CPCCodes           []string `json:"cpc_codes,omitempty"`
	CitedNumbers       []string `json:"cited_numbers,omitempty"`
}

// ListPatentsOptions narrows a listing.
type ListPatentsOptions struct {
	Status    []string
	CPCPrefix string
	Assignee  string
	Page      int
	PageSize  int
}

// PatentPage is one page of patents.
type PatentPage struct {
	Items    []Patent `json:"items"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// Ingest stores or refreshes a patent record.
func (pc *PatentsClient) Ingest(ctx context.Context, req IngestRequest) (*Patent, error) {
	var out Patent
	if err := pc.client.post(ctx, "/api/v1/patents", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one patent by number.
func (pc *PatentsClient) Get(ctx context.Context, patentNumber string) (*Patent, error) {
	var out Patent
	if err := pc.client.get(ctx, "/api/v1/patents/"+url.PathEscape(patentNumber), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns a filtered page of patents.
func (pc *PatentsClient) List(ctx context.Context, opts ListPatentsOptions) (*PatentPage, error) {
	q := url.Values{}
	if len(opts.Status) > 0 {
		q.Set("status", strings.Join(opts.Status, ","))
	}
	if opts.CPCPrefix != "" {
		q.Set("cpc_prefix", opts.CPCPrefix)
	}
	if opts.Assignee != "" {
		q.Set("assignee", opts.Assignee)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}

	path := "/api/v1/patents"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out PatentPage
	if err := pc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BackfillEmbeddings embeds up to batchSize patents without a vector,
// returning how many were embedded.
func (pc *PatentsClient) BackfillEmbeddings(ctx context.Context, batchSize int) (int, error) {
	path := "/api/v1/patents/embeddings/backfill"
	if batchSize > 0 {
		path = fmt.Sprintf("%s?batch_size=%d", path, batchSize)
	}

	var out struct {
		Embedded int `json:"embedded"`
	}
	if err := pc.client.post(ctx, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Embedded, nil
}
