// Package consul provides a gateway persisting tags in HashiCorp Consul
// KV, suitable for small fleets that already run Consul and want tags
// replicated across hosts.
//
// Each file's tag set is stored as one JSON-encoded KV entry under a
// configurable prefix. Writes use check-and-set so concurrent mounts
// cannot lose updates.
package consul

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/consul/api"

	"github.com/tagsfs/tagsfs/data"
)

type ConsulGateway struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	config *ConsulGatewayConfig
}

// ConsulGatewayConfig contains configuration options for the Consul gateway
type ConsulGatewayConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys in Consul KV (default: "tagsfs/")
	Prefix string
}

// NewConsulGateway creates a new Consul-backed gateway
func NewConsulGateway(config *ConsulGatewayConfig) (*ConsulGateway, error) {
	if config == nil {
		config = &ConsulGatewayConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "tagsfs/"
	}
	if !strings.HasSuffix(config.Prefix, "/") {
		config.Prefix += "/"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulGateway{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Returns the identifier name defined for this gateway
func (*ConsulGateway) Name() string {
	return "consul"
}

func (cg *ConsulGateway) Open(ctx context.Context) error {
	_, err := cg.client.Agent().Self()
	return err
}

func (cg *ConsulGateway) Close(ctx context.Context) error {
	return nil
}

func (cg *ConsulGateway) key(fileID string) string {
	return cg.config.Prefix + fileID
}

func (cg *ConsulGateway) ReadTags(ctx context.Context, fileID string) (data.TagSet, error) {
	cg.mu.RLock()
	defer cg.mu.RUnlock()

	pair, _, err := cg.kv.Get(cg.key(fileID), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return data.TagSet{}, nil
	}

	var tags data.TagSet
	if err := json.Unmarshal(pair.Value, &tags); err != nil {
		return nil, fmt.Errorf("corrupt tag entry for %q: %w", fileID, err)
	}
	return tags, nil
}

func (cg *ConsulGateway) WriteTags(ctx context.Context, fileID string, update data.TagUpdateSet) error {
	cg.mu.Lock()
	defer cg.mu.Unlock()

	// Check-and-set loop: re-read and retry when another mount raced us.
	for attempt := 0; attempt < 5; attempt++ {
		pair, _, err := cg.kv.Get(cg.key(fileID), (&api.QueryOptions{}).WithContext(ctx))
		if err != nil {
			return err
		}

		current := data.TagSet{}
		var index uint64
		if pair != nil {
			index = pair.ModifyIndex
			if err := json.Unmarshal(pair.Value, &current); err != nil {
				return fmt.Errorf("corrupt tag entry for %q: %w", fileID, err)
			}
		}

		encoded, err := json.Marshal(current.Apply(update))
		if err != nil {
			return err
		}

		ok, _, err := cg.kv.CAS(&api.KVPair{
			Key:         cg.key(fileID),
			Value:       encoded,
			ModifyIndex: index,
		}, (&api.WriteOptions{}).WithContext(ctx))
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	return fmt.Errorf("write to %q kept losing check-and-set races", fileID)
}

func (cg *ConsulGateway) DeleteTags(ctx context.Context, fileID string) error {
	cg.mu.Lock()
	defer cg.mu.Unlock()

	_, err := cg.kv.Delete(cg.key(fileID), (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cg *ConsulGateway) ListIDs(ctx context.Context) ([]string, error) {
	cg.mu.RLock()
	defer cg.mu.RUnlock()

	keys, _, err := cg.kv.Keys(cg.config.Prefix, "", (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, cg.config.Prefix))
	}
	return ids, nil
}
