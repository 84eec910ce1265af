package curve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// FitMessage is the retained payload describing the latest fit
type FitMessage struct {
	ThetaDeg    float64 `json:"thetaDeg"`
	ThetaRad    float64 `json:"thetaRad"`
	M           float64 `json:"m"`
	X           float64 `json:"x"`
	L1          float64 `json:"l1"`
	MSE         float64 `json:"mse"`
	CoarseMSE   float64 `json:"coarseMse"`
	Points      int     `json:"points"`
	Evaluations int     `json:"evaluations"`
	Timestamp   int64   `json:"timestamp"`
}

// NewFitMessage summarizes r without the per-point arrays
func NewFitMessage(r FitResult) FitMessage {
	return FitMessage{
		ThetaDeg:    r.Params.Theta,
		ThetaRad:    r.Params.Theta * math.Pi / 180.0,
		M:           r.Params.M,
		X:           r.Params.X,
		L1:          r.MAE,
		MSE:         r.MSE,
		CoarseMSE:   r.CoarseMSE,
		Points:      len(r.U),
		Evaluations: r.Evaluations,
		Timestamp:   time.Now().Unix(),
	}
}

// Publisher publishes fit results to MQTT
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	timeout       time.Duration
}

// NewPublisher creates a result publisher. An empty prefix falls back to
// DefaultPublishPrefix.
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultPublishPrefix
	}
	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           1,
		retain:        true,
		timeout:       5 * time.Second,
	}
}

// FitTopic is where the summary of the latest fit is published
func (p *Publisher) FitTopic() string {
	return p.publishPrefix + "/fit"
}

// ParamsTopic carries the plain-text report of the latest fit
func (p *Publisher) ParamsTopic() string {
	return p.FitTopic() + "/params"
}

// PublishResult publishes the JSON summary to {prefix}/fit and the text
// report to {prefix}/fit/params
func (p *Publisher) PublishResult(r FitResult) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	payload, err := json.Marshal(NewFitMessage(r))
	if err != nil {
		return fmt.Errorf("marshaling fit result: %w", err)
	}
	if err := p.publish(p.FitTopic(), payload); err != nil {
		return err
	}

	var report bytes.Buffer
	if err := WriteReport(&report, r); err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	if err := p.publish(p.ParamsTopic(), report.Bytes()); err != nil {
		return err
	}

	log.Printf("Published fit to %s: theta=%.3f M=%.5f X=%.3f",
		p.FitTopic(), r.Params.Theta, r.Params.M, r.Params.X)
	return nil
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
