package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
)

const recipeMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "long"},
      "category_id": {"type": "long"},
      "name":        {"type": "text"},
      "ingredients": {"type": "text"},
      "directions":  {"type": "text"}
    }
  }
}`

func NewClient(ctx context.Context, url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error response %s: %s", res.Status(), body)
	}

	logging.FromContext(ctx).Info("elasticsearch_connected", "url", url)
	return client, nil
}

// RecipeIndex mirrors recipes into Elasticsearch and serves fuzzy search over them.
type RecipeIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewRecipeIndex(es *elasticsearch.Client, index string) *RecipeIndex {
	return &RecipeIndex{es: es, index: index}
}

func (x *RecipeIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(ctx),
		x.es.Indices.Create.WithBody(bytes.NewReader([]byte(recipeMapping))),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.index, res.Status())
	}
	return nil
}

func (x *RecipeIndex) IndexRecipe(ctx context.Context, r *models.Recipe) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(r); err != nil {
		return fmt.Errorf("encode recipe: %w", err)
	}

	res, err := x.es.Index(x.index, &buf,
		x.es.Index.WithContext(ctx),
		x.es.Index.WithDocumentID(strconv.FormatUint(uint64(r.ID), 10)),
		x.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index recipe: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index recipe %d: %s", r.ID, res.Status())
	}
	return nil
}

func (x *RecipeIndex) RemoveRecipe(ctx context.Context, id uint) error {
	res, err := x.es.Delete(x.index, strconv.FormatUint(uint64(id), 10),
		x.es.Delete.WithContext(ctx),
		x.es.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete recipe %d: %s", id, res.Status())
	}
	return nil
}

func (x *RecipeIndex) SearchRecipes(ctx context.Context, categoryID uint, q string, offset, limit int) (int64, []models.Recipe, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^2", "ingredients"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"category_id": categoryID},
				},
			},
		},
		"from": offset,
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(&buf),
		x.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search %s: %s", x.index, res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source models.Recipe `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	recipes := make([]models.Recipe, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		recipes[i] = hit.Source
	}
	return r.Hits.Total.Value, recipes, nil
}
