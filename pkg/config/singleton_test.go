package config

import "testing"

func TestSetConfig(t *testing.T) {
	SetConfig(nil)
	defer SetConfig(nil)

	if GetConfig() != nil {
		t.Fatal("GetConfig() != nil before SetConfig")
	}

	cfg := MinimalConfig()
	SetConfig(cfg)
	if GetConfig() != cfg {
		t.Error("GetConfig() did not return the config passed to SetConfig")
	}

	next := MinimalConfig()
	SetConfig(next)
	if GetConfig() != next {
		t.Error("SetConfig did not replace the previous configuration")
	}
}
