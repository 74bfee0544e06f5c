package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()
	assert.NotNil(t, cfg)
	assert.Nil(t, cfg.Validate())

	assert.Equal(t, 510, cfg.Limits.LineCapacity)
	assert.Equal(t, 4, cfg.Limits.MaxPipelineStages)
	assert.Equal(t, "/apps", cfg.Shell.ProgramDir)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*Configuration)
		wantErr string
	}{
		"default": {
			mutate: func(*Configuration) {},
		},
		"relative program dir": {
			mutate:  func(c *Configuration) { c.Shell.ProgramDir = "apps" },
			wantErr: "program_dir",
		},
		"single stage pipelines": {
			mutate:  func(c *Configuration) { c.Limits.MaxPipelineStages = 1 },
			wantErr: "max_pipeline_stages",
		},
		"no room for stdio": {
			mutate:  func(c *Configuration) { c.Limits.DescriptorSlots = 2 },
			wantErr: "descriptor_slots",
		},
		"relative seeded file": {
			mutate: func(c *Configuration) {
				c.Filesystem.Files = append(c.Filesystem.Files, File{Path: "etc/motd"})
			},
			wantErr: "path",
		},
		"bad hostname": {
			mutate:  func(c *Configuration) { c.Hostname = "not a hostname" },
			wantErr: "hostname",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.Nil(t, err)
				return
			}
			if assert.NotNil(t, err) {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestRecordings(t *testing.T) {
	cfg := Default()

	names, err := cfg.ListRecordings()
	assert.Nil(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"b.cast", "a.cast"} {
		fd, err := cfg.CreateRecording(name)
		assert.Nil(t, err)
		fd.Write([]byte(name))
		fd.Close()
	}

	names, err = cfg.ListRecordings()
	assert.Nil(t, err)
	assert.Equal(t, []string{"a.cast", "b.cast"}, names)

	fd, err := cfg.OpenRecording("../recordings/b.cast")
	assert.Nil(t, err)
	defer fd.Close()
	buf := make([]byte, 16)
	n, _ := fd.Read(buf)
	assert.Equal(t, "b.cast", string(buf[:n]))

	_, err = cfg.OpenRecording("missing.cast")
	assert.NotNil(t, err)
}
