package main

import (
	"errors"
	"testing"

	"github.com/niksmo/souvenir-shop/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

func TestOrderStreamTopics(t *testing.T) {
	var cfg config.Config
	cfg.Broker.Topics.Orders = "shop-orders"
	cfg.Broker.Consumers.OrderHistoryGroup = "shop-order-history"

	specs := orderStreamTopics(cfg)
	require.Len(t, specs, 2)

	assert.Equal(t, "shop-orders", specs[0].name)
	assert.Equal(t, policyDelete, *specs[0].configs()["cleanup.policy"])

	assert.Equal(t, "shop-order-history-table", specs[1].name)
	assert.Equal(t, policyCompact, *specs[1].configs()["cleanup.policy"])
	assert.Equal(t, "2", *specs[1].configs()["min.insync.replicas"])
}

func TestOutcome(t *testing.T) {
	msg, err := outcome(kadm.CreateTopicResponse{Topic: "a"})
	require.NoError(t, err)
	assert.Contains(t, msg, "created")

	msg, err = outcome(kadm.CreateTopicResponse{
		Topic: "a", Err: kerr.TopicAlreadyExists,
	})
	require.NoError(t, err)
	assert.Contains(t, msg, "exists")

	_, err = outcome(kadm.CreateTopicResponse{
		Topic: "a", Err: kerr.PolicyViolation,
	})
	assert.True(t, errors.Is(err, kerr.PolicyViolation))
	assert.ErrorContains(t, err, "a:")
}
