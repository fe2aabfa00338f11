package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lovoo/goka"
	"github.com/niksmo/souvenir-shop/config"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

const (
	policyDelete  = "delete"
	policyCompact = "compact"
)

type topicSpec struct {
	name       string
	policy     string
	partitions int32
	replicas   int16
	minISR     int
}

// orderStreamTopics lists the topics the order producer and the
// order history processor expect to exist.
func orderStreamTopics(cfg config.Config) []topicSpec {
	return []topicSpec{
		{
			name:       cfg.Broker.Topics.Orders,
			policy:     policyDelete,
			partitions: 3,
			replicas:   3,
			minISR:     2,
		},
		{
			// goka keeps one order list per customer here
			name:       historyTable(cfg.Broker.Consumers.OrderHistoryGroup),
			policy:     policyCompact,
			partitions: 3,
			replicas:   3,
			minISR:     2,
		},
	}
}

func historyTable(group string) string {
	return string(goka.GroupTable(goka.Group(group)))
}

func (s topicSpec) configs() map[string]*string {
	minISR := strconv.Itoa(s.minISR)
	return map[string]*string{
		"cleanup.policy":      &s.policy,
		"min.insync.replicas": &minISR,
	}
}

func (s topicSpec) String() string {
	return fmt.Sprintf(
		"%s (%s, partitions=%d, replicas=%d)",
		s.name, s.policy, s.partitions, s.replicas,
	)
}

// outcome treats an existing topic as done.
func outcome(res kadm.CreateTopicResponse) (string, error) {
	switch {
	case res.Err == nil:
		return fmt.Sprintf("created %s", res.Topic), nil
	case errors.Is(res.Err, kerr.TopicAlreadyExists):
		return fmt.Sprintf("exists  %s", res.Topic), nil
	default:
		return "", fmt.Errorf("%s: %w", res.Topic, res.Err)
	}
}
