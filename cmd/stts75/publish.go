// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/physic"
)

// sample is the JSON payload published for each reading.
type sample struct {
	Temperature float64 `json:"temp_c"`
	Time        string  `json:"time"`
}

func newSample(t physic.Temperature, now time.Time) sample {
	return sample{Temperature: t.Celsius(), Time: now.UTC().Format(time.RFC3339)}
}

// publisher sends readings to an MQTT broker with QoS 0.
type publisher struct {
	client mqtt.Client
	topic  string
}

func clientOptions(broker string) *mqtt.ClientOptions {
	hostname, _ := os.Hostname()
	return mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("stts75-" + hostname).
		SetAutoReconnect(true)
}

func newPublisher(broker, topic string) (*publisher, error) {
	client := mqtt.NewClient(clientOptions(broker))
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &publisher{client: client, topic: topic}, nil
}

func (p *publisher) Publish(t physic.Temperature, now time.Time) error {
	payload, err := json.Marshal(newSample(t, now))
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	token.Wait()
	return token.Error()
}

func (p *publisher) Close() {
	p.client.Disconnect(250)
}
