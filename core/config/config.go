package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	gossh "golang.org/x/crypto/ssh"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	RecordingsDirName = "recordings"
	PrivateKeyName    = "private_key"
	AppLogName        = "app.log"
)

type Configuration struct {
	configFs afero.Fs

	Hostname  string `json:"hostname" validate:"required,hostname_rfc1123"`
	Motd      string `json:"motd"`
	SSHPort   int    `json:"ssh_port" validate:"gte=0,lte=65535"`
	SSHBanner string `json:"ssh_banner"`

	Console    Console    `json:"console"`
	Shell      Shell      `json:"shell"`
	Limits     Limits     `json:"limits"`
	Filesystem Filesystem `json:"filesystem"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

type Console struct {
	Width                int   `json:"width" validate:"gte=20,lte=500"`
	Height               int   `json:"height" validate:"gte=5,lte=500"`
	OutputBytesPerSecond int64 `json:"output_bytes_per_second" validate:"gte=0"`
}

type Shell struct {
	Prompt     string `json:"prompt" validate:"required"`
	ProgramDir string `json:"program_dir" validate:"required,startswith=/"`
}

type Limits struct {
	LineCapacity      int `json:"line_capacity" validate:"gte=1"`
	MaxPipelineStages int `json:"max_pipeline_stages" validate:"gte=2"`
	DescriptorSlots   int `json:"descriptor_slots" validate:"gte=3"`
	PipeCapacity      int `json:"pipe_capacity" validate:"gte=1"`
	MaxPipes          int `json:"max_pipes" validate:"gte=1"`
	KeyQueue          int `json:"key_queue" validate:"gte=1"`
}

type Filesystem struct {
	Directories []string `json:"directories" validate:"dive,startswith=/"`
	Files       []File   `json:"files" validate:"dive"`
	Mounts      []Mount  `json:"mounts" validate:"dive"`
	ProcDir     string   `json:"proc_dir" validate:"omitempty,startswith=/"`
}

// Mount exposes a host directory inside every machine. The host is never
// written to, writable mounts keep changes in memory.
type Mount struct {
	Path     string `json:"path" validate:"required,startswith=/"`
	HostDir  string `json:"host_dir" validate:"required"`
	Writable bool   `json:"writable"`
}

type File struct {
	Path     string `json:"path" validate:"required,startswith=/"`
	Contents string `json:"contents"`
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewMemMapFs()
	}
	return c.configFs
}

// CreateRecording creates a console recording with the given name.
func (c *Configuration) CreateRecording(name string) (afero.File, error) {
	if err := c.fs().MkdirAll(RecordingsDirName, 0700); err != nil {
		return nil, err
	}
	toCreate := filepath.Join(RecordingsDirName, name)
	return c.fs().Create(toCreate)
}

// OpenRecording opens a console recording by name for reading.
func (c *Configuration) OpenRecording(name string) (afero.File, error) {
	return c.fs().Open(filepath.Join(RecordingsDirName, filepath.Base(name)))
}

// ListRecordings returns the names of the stored recordings.
func (c *Configuration) ListRecordings() ([]string, error) {
	infos, err := afero.ReadDir(c.fs(), RecordingsDirName)
	switch {
	case os.IsNotExist(err):
		return nil, nil
	case err != nil:
		return nil, err
	}

	var names []string
	for _, info := range infos {
		if !info.IsDir() {
			names = append(names, info.Name())
		}
	}
	return names, nil
}

// PrivateKeyPem returns the bytes of the private key.
func (c *Configuration) PrivateKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), PrivateKeyName)
}

// HostSigner parses the private key into a signer for the SSH server.
func (c *Configuration) HostSigner() (gossh.Signer, error) {
	keyPem, err := c.PrivateKeyPem()
	if err != nil {
		return nil, err
	}
	return gossh.ParsePrivateKey(keyPem)
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_RDONLY, 0600)
}

// Default returns the built-in configuration backed by an in-memory
// directory.
func Default() *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewMemMapFs()
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
