package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
)

// DefaultConfName is looked up in the XDG config directories when no file is given
var DefaultConfName = filepath.Join("simplesocket", "simplesocket.conf")

// Properties holds global config properties
var Properties *ServerProperties

// ServerProperties defines global config properties
type ServerProperties struct {
	Port       int    `cfg:"port"`
	Mode       string `cfg:"mode"`
	MaxConnect int    `cfg:"maxconnect"`
	ReusePort  bool   `cfg:"reuseport"`
	LogDir     string `cfg:"logdir"`
	// seconds
	ShutdownTimeout int `cfg:"shutdowntimeout"`
}

func init() {
	Properties = Default()
}

// Default returns the properties used when no config file is found
func Default() *ServerProperties {
	return &ServerProperties{
		Port:            6399,
		Mode:            "echo",
		MaxConnect:      0,
		ReusePort:       false,
		LogDir:          filepath.Join(xdg.StateHome, "simplesocket"),
		ShutdownTimeout: 10,
	}
}

func parse(src io.Reader) (*ServerProperties, error) {
	config := Default()

	// read config file
	rawMap := make(map[string]string)
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > 0 && line[0] == '#' {
			continue
		}
		pivot := strings.IndexAny(line, " \t")
		if pivot > 0 && pivot < len(line)-1 { // separator found
			key := line[0:pivot]
			value := strings.TrimSpace(line[pivot+1:])
			rawMap[strings.ToLower(key)] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	// parse format
	t := reflect.TypeOf(config)
	v := reflect.ValueOf(config)
	n := t.Elem().NumField()
	for i := 0; i < n; i++ {
		field := t.Elem().Field(i)
		fieldVal := v.Elem().Field(i)
		key, ok := field.Tag.Lookup("cfg")
		if !ok {
			key = field.Name
		}
		value, ok := rawMap[strings.ToLower(key)]
		if !ok {
			continue
		}
		// fill config
		switch field.Type.Kind() {
		case reflect.String:
			fieldVal.SetString(value)
		case reflect.Int:
			intValue, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "config %s", key)
			}
			fieldVal.SetInt(intValue)
		case reflect.Bool:
			fieldVal.SetBool(toBool(value))
		}
	}
	return config, nil
}

// Setup reads config file and stores properties into Properties.
// With an empty filename the XDG config directories are searched, defaults stay if nothing is found.
func Setup(configFilename string) error {
	if configFilename == "" {
		found, err := xdg.SearchConfigFile(DefaultConfName)
		if err != nil {
			// no config file
			Properties = Default()
			return nil
		}
		configFilename = found
	}
	file, err := os.Open(configFilename)
	if err != nil {
		return errors.Wrap(err, "open config")
	}
	defer file.Close()
	props, err := parse(file)
	if err != nil {
		return err
	}
	Properties = props
	return nil
}

func toBool(s string) bool {
	ls := strings.ToLower(s)
	switch ls {
	case "true", "yes", "t", "y":
		return true
	default:
		return false
	}
}
