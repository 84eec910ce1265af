package curve

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFitMessage(t *testing.T) {
	fx := fitFixture()
	fx.Evaluations = 25242

	msg := NewFitMessage(fx)

	assert.Equal(t, 30.0, msg.ThetaDeg)
	assert.InDelta(t, deg2rad(30), msg.ThetaRad, 1e-15)
	assert.Equal(t, fx.Params.M, msg.M)
	assert.Equal(t, fx.Params.X, msg.X)
	assert.Equal(t, fx.MAE, msg.L1)
	assert.Equal(t, fx.MSE, msg.MSE)
	assert.Equal(t, 40, msg.Points)
	assert.Equal(t, 25242, msg.Evaluations)
	assert.NotZero(t, msg.Timestamp)
}

func TestPublisher_PublishResult(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)
	pub := NewPublisher(client, "")

	require.NoError(t, pub.PublishResult(fitFixture()))

	msgs := client.GetPublishedMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "sinefit/fit", msgs[0].Topic)
	assert.Equal(t, byte(1), msgs[0].QoS)
	assert.True(t, msgs[0].Retain)
	assert.Equal(t, "sinefit/fit/params", msgs[1].Topic)
	assert.Contains(t, string(msgs[1].Payload), "theta_deg: 30.0\n")

	var decoded FitMessage
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &decoded))
	assert.Equal(t, 30.0, decoded.ThetaDeg)
	assert.Equal(t, 55.0, decoded.X)
	assert.Equal(t, 40, decoded.Points)
}

func TestPublisher_CustomPrefixAndOptions(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)
	pub := NewPublisher(client, "lab/curves")
	pub.SetQoS(0)
	pub.SetRetain(false)
	pub.SetQoS(7) // ignored

	assert.Equal(t, "lab/curves/fit", pub.FitTopic())
	assert.Equal(t, "lab/curves/fit/params", pub.ParamsTopic())
	require.NoError(t, pub.PublishResult(fitFixture()))

	msgs := client.GetPublishedMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "lab/curves/fit", msgs[0].Topic)
	assert.Equal(t, "lab/curves/fit/params", msgs[1].Topic)
	assert.Equal(t, byte(0), msgs[0].QoS)
	assert.False(t, msgs[0].Retain)
}

func TestPublisher_NotConnected(t *testing.T) {
	client := NewMockClient()
	pub := NewPublisher(client, "")

	err := pub.PublishResult(fitFixture())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
	assert.Empty(t, client.GetPublishedMessages())

	err = NewPublisher(nil, "").PublishResult(fitFixture())
	assert.Error(t, err)
}

func TestPublisher_PublishError(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)
	boom := errors.New("broker rejected")
	client.SetPublishError(boom)

	err := NewPublisher(client, "").PublishResult(fitFixture())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sinefit/fit")
}

func TestNewMQTTClient_NoBroker(t *testing.T) {
	client, err := NewMQTTClient(MQTTConfig{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestMockClient_ConnectLifecycle(t *testing.T) {
	client := NewMockClient()
	assert.False(t, client.IsConnected())

	require.NoError(t, client.Connect().Error())
	assert.True(t, client.IsConnectionOpen())

	client.Disconnect(0)
	assert.False(t, client.IsConnected())

	client.SetConnectError(errors.New("refused"))
	assert.Error(t, client.Connect().Error())
	assert.False(t, client.IsConnected())
}
