package config

import (
	"fmt"

	postgrest "github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

// NewSupabase creates the Supabase client used for storage and tables.
func NewSupabase(cfg Config) (*supa.Client, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("supabase: SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}
	client, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("init supabase client: %w", err)
	}
	Log.WithField("url", cfg.SupabaseURL).Info("supabase client initialized")
	return client, nil
}

// NewPostgrest creates a bare PostgREST client against the project's REST
// endpoint, authenticated with the service key.
func NewPostgrest(cfg Config) (*postgrest.Client, error) {
	client := postgrest.NewClient(cfg.SupabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        cfg.SupabaseServiceKey,
		"Authorization": fmt.Sprintf("Bearer %s", cfg.SupabaseServiceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("init postgrest client: %w", client.ClientError)
	}
	return client, nil
}
