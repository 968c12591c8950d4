// Copyright 2025 Code Weaver Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultUnsplashBaseURL = "https://api.unsplash.com"
	defaultPixabayBaseURL  = "https://pixabay.com/api/"
	defaultPexelsBaseURL   = "https://api.pexels.com/v1"

	providerTimeout = 10 * time.Second
)

func newProviderClient() *http.Client {
	return &http.Client{Timeout: providerTimeout}
}

func fetchJSON(ctx context.Context, client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Unsplash searches the Unsplash photo API using a Client-ID access key.
type Unsplash struct {
	accessKey string
	baseURL   string
	client    *http.Client
}

func NewUnsplash(accessKey string) *Unsplash {
	return &Unsplash{accessKey: accessKey, baseURL: defaultUnsplashBaseURL, client: newProviderClient()}
}

func (u *Unsplash) Name() string { return "unsplash" }

func (u *Unsplash) Search(ctx context.Context, query string, count int) ([]Image, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(count))
	q.Set("orientation", "landscape")

	req, err := http.NewRequest(http.MethodGet, u.baseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)

	var body struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"results"`
	}
	if err := fetchJSON(ctx, u.client, req, &body); err != nil {
		return nil, fmt.Errorf("unsplash search: %w", err)
	}

	imgs := make([]Image, 0, len(body.Results))
	for _, r := range body.Results {
		if r.URLs.Regular == "" {
			continue
		}
		imgs = append(imgs, Image{URL: r.URLs.Regular, Photographer: r.User.Name, Source: "Unsplash"})
	}
	return imgs, nil
}

// Pixabay searches the Pixabay API; the key travels as a query parameter.
type Pixabay struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewPixabay(apiKey string) *Pixabay {
	return &Pixabay{apiKey: apiKey, baseURL: defaultPixabayBaseURL, client: newProviderClient()}
}

func (p *Pixabay) Name() string { return "pixabay" }

func (p *Pixabay) Search(ctx context.Context, query string, count int) ([]Image, error) {
	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("q", query)
	q.Set("image_type", "photo")
	q.Set("orientation", "horizontal")
	q.Set("per_page", strconv.Itoa(count))

	req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Hits []struct {
			LargeImageURL string `json:"largeImageURL"`
			WebformatURL  string `json:"webformatURL"`
			User          string `json:"user"`
		} `json:"hits"`
	}
	if err := fetchJSON(ctx, p.client, req, &body); err != nil {
		return nil, fmt.Errorf("pixabay search: %w", err)
	}

	imgs := make([]Image, 0, len(body.Hits))
	for _, h := range body.Hits {
		u := h.LargeImageURL
		if u == "" {
			u = h.WebformatURL
		}
		if u == "" {
			continue
		}
		imgs = append(imgs, Image{URL: u, Photographer: h.User, Source: "Pixabay"})
	}
	return imgs, nil
}

// Pexels searches the Pexels API using a bearer-style Authorization header.
type Pexels struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewPexels(apiKey string) *Pexels {
	return &Pexels{apiKey: apiKey, baseURL: defaultPexelsBaseURL, client: newProviderClient()}
}

func (p *Pexels) Name() string { return "pexels" }

func (p *Pexels) Search(ctx context.Context, query string, count int) ([]Image, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(count))

	req, err := http.NewRequest(http.MethodGet, p.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", p.apiKey)

	var body struct {
		Photos []struct {
			Photographer string `json:"photographer"`
			Src          struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := fetchJSON(ctx, p.client, req, &body); err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}

	imgs := make([]Image, 0, len(body.Photos))
	for _, ph := range body.Photos {
		if ph.Src.Large == "" {
			continue
		}
		imgs = append(imgs, Image{URL: ph.Src.Large, Photographer: ph.Photographer, Source: "Pexels"})
	}
	return imgs, nil
}
