package db

import (
	"encoding/json"

	"github.com/bakape/caselog/config"
	"github.com/bakape/caselog/mlog"
)

// Load configs from the database and update on each change
func loadConfigs() error {
	conf, err := GetConfigs()
	if err != nil {
		return err
	}
	config.Set(conf)
	mlog.InitEmail()

	return Listen("config_updates", updateConfigs)
}

// GetConfigs retrieves the global configuration
func GetConfigs() (c config.Configs, err error) {
	var enc []byte
	err = sq.Select("val").
		From("main").
		Where("id = 'config'").
		QueryRow().
		Scan(&enc)
	if err != nil {
		return
	}
	c = config.Defaults
	err = json.Unmarshal(enc, &c)
	return
}

// WriteConfigs writes the global configuration to the database and notifies
// other instances
func WriteConfigs(c config.Configs) (err error) {
	enc, err := json.Marshal(c)
	if err != nil {
		return
	}
	_, err = sq.Update("main").
		Set("val", string(enc)).
		Where("id = 'config'").
		Exec()
	if err != nil {
		return
	}
	config.Set(c)
	_, err = db.Exec(`notify config_updates`)
	return
}

func updateConfigs(_ string) (err error) {
	conf, err := GetConfigs()
	if err != nil {
		return
	}
	config.Set(conf)
	mlog.InitEmail()
	return
}
