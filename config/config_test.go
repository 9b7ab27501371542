package config

import (
	"reflect"
	"testing"
)

func TestAdminIDs(t *testing.T) {
	cases := []struct {
		raw  string
		want []int64
	}{
		{"", []int64{}},
		{"123", []int64{123}},
		{"123,456", []int64{123, 456}},
		{" 123 , 456 ", []int64{123, 456}},
		{"123,abc,456", []int64{123, 456}},
		{",,123,", []int64{123}},
	}
	for _, tc := range cases {
		c := Config{AdminChatIDs: tc.raw}
		if got := c.AdminIDs(); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("AdminIDs(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestGetDSN(t *testing.T) {
	c := Config{
		PostgreSQLHost:     "db",
		PostgreSQLPort:     "5432",
		PostgreSQLUser:     "lavka",
		PostgreSQLPassword: "secret",
		PostgreSQLDatabase: "lavka",
		PostgreSQLSSLMode:  "disable",
		PostgreSQLSchema:   "public",
	}
	want := "host=db port=5432 user=lavka password=secret dbname=lavka sslmode=disable search_path=public"
	if got := c.GetDSN(); got != want {
		t.Fatalf("GetDSN() = %q, want %q", got, want)
	}
}

func TestGetRabbitMQURL(t *testing.T) {
	c := Config{
		RabbitMQUsername: "guest",
		RabbitMQPassword: "guest",
		RabbitMQAddr:     "mq",
		RabbitMQPort:     "5672",
		RabbitMQVhost:    "/",
	}
	if got := c.GetRabbitMQURL(); got != "amqp://guest:guest@mq:5672/" {
		t.Fatalf("GetRabbitMQURL() = %q", got)
	}
}
