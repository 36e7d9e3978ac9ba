package main

import (
	"context"

	"github.com/kbukum/deliverykit/logger"
	"github.com/kbukum/deliverykit/session"
)

// logHost reports telemetry and state changes through the logger.
type logHost struct {
	log *logger.Logger
}

func (h logHost) DispatchTelemetry(_ context.Context, payload map[string]string) {
	fields := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		fields[k] = v
	}
	h.log.Info("analytics payload", fields)
}

func (h logHost) PublishState(_ context.Context, snap session.Snapshot) {
	h.log.Debug("visitor state changed", logger.Fields(
		"tnt_id", snap.TntID,
		"third_party_id", snap.ThirdPartyID,
		logger.FieldSessionID, snap.SessionID,
		"edge_host", snap.EdgeHost,
	))
}
