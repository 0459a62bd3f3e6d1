package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"i4.energy/across/gsmlink/at"
	"i4.energy/across/gsmlink/gsm"
	"i4.energy/across/gsmlink/modem"
)

// publisher is the part of mqtt.Client the bridge publishes through.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Bridge mirrors the modem onto an MQTT broker. Unsolicited result codes
// go to <topic>/urc, commands arrive on <topic>/cmd and their results are
// published on <topic>/resp.
type Bridge struct {
	Logger         *slog.Logger
	Modem          gsm.Commander
	Topic          string
	CommandTimeout time.Duration

	opts *mqtt.ClientOptions
	pub  publisher
	ctx  context.Context
}

// URCMessage is published for every unsolicited result code.
type URCMessage struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// CommandMessage is the payload expected on <topic>/cmd.
type CommandMessage struct {
	ID        string `json:"id,omitempty"`
	Command   string `json:"command"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
}

// ResultMessage answers a CommandMessage.
type ResultMessage struct {
	ID     string   `json:"id,omitempty"`
	Result string   `json:"result,omitempty"`
	Lines  []string `json:"lines,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func NewBridge(config *Config, logger *slog.Logger) *Bridge {
	b := &Bridge{
		Logger:         logger,
		Topic:          config.MQTTTopic,
		CommandTimeout: config.CommandTimeout,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.MQTTBroker)
	opts.SetClientID(config.MQTTClientID)
	if config.MQTTUsername != "" {
		opts.SetUsername(config.MQTTUsername)
		opts.SetPassword(config.MQTTPassword)
	}
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		b.Logger.Warn("MQTT connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		topic := b.Topic + "/cmd"
		b.Logger.Info("MQTT connected, subscribing", "topic", topic)
		if token := c.Subscribe(topic, 0, b.onCommand); token.Wait() && token.Error() != nil {
			b.Logger.Error("MQTT subscribe failed", "topic", topic, "error", token.Error())
		}
	})
	b.opts = opts
	return b
}

// Start connects to the broker and disconnects when ctx is done. It must
// be called before the modem starts polling.
func (b *Bridge) Start(ctx context.Context) error {
	b.ctx = ctx
	cli := mqtt.NewClient(b.opts)
	if t := cli.Connect(); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	b.pub = cli
	go func() {
		<-ctx.Done()
		cli.Disconnect(500)
	}()
	return nil
}

// Unsolicited publishes a result code received outside a command.
func (b *Bridge) Unsolicited(code at.ResultCode, text string) {
	if b.pub == nil {
		return
	}
	payload, err := json.Marshal(URCMessage{Code: code.String(), Text: text})
	if err != nil {
		return
	}
	b.publish(b.Topic+"/urc", payload)
}

func (b *Bridge) onCommand(_ mqtt.Client, msg mqtt.Message) {
	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	// Handlers must not block the paho router.
	go func() {
		b.publish(b.Topic+"/resp", b.execute(ctx, msg.Payload()))
	}()
}

func (b *Bridge) execute(ctx context.Context, payload []byte) []byte {
	var req CommandMessage
	var res ResultMessage

	if err := json.Unmarshal(payload, &req); err != nil {
		b.Logger.Warn("MQTT bad payload", "error", err)
		res.Error = err.Error()
		return encode(res)
	}
	res.ID = req.ID

	text, err := commandText(req.Command)
	if err != nil {
		res.Error = err.Error()
		return encode(res)
	}

	timeout := b.CommandTimeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}

	resp, err := b.Modem.Exec(ctx, text, timeout)
	if err != nil && !errors.Is(err, modem.ErrCommandFailed) {
		b.Logger.Error("MQTT command failed", "command", text, "error", err)
		res.Error = err.Error()
		return encode(res)
	}
	res.Result = resp.Final
	res.Lines = resp.Lines
	return encode(res)
}

func (b *Bridge) publish(topic string, payload []byte) {
	if b.pub == nil {
		return
	}
	t := b.pub.Publish(topic, 0, false, payload)
	go func() {
		if t.WaitTimeout(5*time.Second) && t.Error() != nil {
			b.Logger.Error("MQTT publish failed", "topic", topic, "error", t.Error())
		}
	}()
}

// encode marshals the bridge's own message types, which cannot fail.
func encode(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
