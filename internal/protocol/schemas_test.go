package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	cmdSchema := compile("cmd.schema.json")
	resultSchema := compile("result.schema.json")
	notifySchema := compile("notify.schema.json")
	stateSchema := compile("state.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "role":"AGENT",
	  "agent_name":"alpha"
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "session_id":"3f2c9a64-9f3e-4a48-b9a0-8c2f1f1d8e21",
	  "agent_id":"A1",
	  "arena_params":{"grid_width":10,"grid_height":10,"seed":1337},
	  "roster":[
	    {"id":"A1","name":"alpha","pos":[0,0],"alive":true},
	    {"id":"A2","name":"beta","pos":[1,0],"alive":true,"ally":"A1"}
	  ]
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var cmd any
	_ = json.Unmarshal([]byte(`{
	  "type":"CMD",
	  "protocol_version":"1.0",
	  "cmd_id":"c1",
	  "op":"MOVE",
	  "dx":1,
	  "dy":-1
	}`), &cmd)
	validate(cmdSchema, cmd)

	var result any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "cmd_id":"c1",
	  "ok":true,
	  "seq":7
	}`), &result)
	validate(resultSchema, result)

	var notify any
	_ = json.Unmarshal([]byte(`{
	  "type":"NOTIFY",
	  "protocol_version":"1.0",
	  "seq":12,
	  "at":1767225600,
	  "kind":"BATTLE",
	  "agent":"A1",
	  "opponent":"A2",
	  "winner":"A1",
	  "loser":"A2",
	  "transferred":250,
	  "percent":25,
	  "eliminated":false
	}`), &notify)
	validate(notifySchema, notify)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"STATE",
	  "protocol_version":"1.0",
	  "roster":[{"id":"A1","name":"alpha","pos":[3,4],"alive":true}],
	  "vaults":[{"agent_id":"A1","staked":1000,"shares":1000}]
	}`), &state)
	validate(stateSchema, state)
}

func TestSchemas_RejectBadSamples(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "cmd.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	var bad any
	_ = json.Unmarshal([]byte(`{
	  "type":"CMD",
	  "protocol_version":"1.0",
	  "cmd_id":"c1",
	  "op":"TELEPORT"
	}`), &bad)
	if err := s.Validate(bad); err == nil {
		t.Fatalf("expected unknown op to fail validation")
	}

	var badDelta any
	_ = json.Unmarshal([]byte(`{
	  "type":"CMD",
	  "protocol_version":"1.0",
	  "cmd_id":"c2",
	  "op":"MOVE",
	  "dx":2
	}`), &badDelta)
	if err := s.Validate(badDelta); err == nil {
		t.Fatalf("expected out-of-range delta to fail validation")
	}
}
