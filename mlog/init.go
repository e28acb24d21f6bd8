// Package mlog wires the log handlers used across the module
package mlog

import (
	"sync"

	"github.com/bakape/caselog/config"
	"github.com/go-playground/log"
	"github.com/go-playground/log/handlers/console"
	"github.com/go-playground/log/handlers/email"
	"gopkg.in/gomail.v2"
)

// DefaultTimeFormat is the default log timestamp format
const DefaultTimeFormat = "2006-01-02 15:04:05"

var (
	// Ensures no data races on handler reconfiguration
	rw sync.RWMutex

	// Ensure the email handler is only registered once
	once sync.Once

	// Email handler for error-level entries
	eLog *email.Email
)

// Init registers the console handler. Must be called before any logging.
func Init() {
	rw.Lock()
	defer rw.Unlock()

	c := console.New(true)
	c.SetTimestampFormat(DefaultTimeFormat)
	log.AddHandler(c, log.AllLevels...)
}

// InitEmail registers the email handler for error-level entries, if enabled
// by configuration. Called on boot and on each configuration reload.
func InitEmail() {
	rw.Lock()
	defer rw.Unlock()

	conf := config.Get()
	if eLog == nil {
		eLog = email.New(conf.EmailErrSub, int(conf.EmailErrPort),
			conf.EmailErrMail, conf.EmailErrPass, conf.EmailErrMail,
			[]string{conf.EmailErrMail})
	} else {
		eLog.SetEmailConfig(conf.EmailErrSub, int(conf.EmailErrPort),
			conf.EmailErrMail, conf.EmailErrPass, conf.EmailErrMail,
			[]string{conf.EmailErrMail})
	}
	eLog.SetEnabled(conf.EmailErr)
	eLog.SetFormatFunc(format)

	if conf.EmailErr {
		once.Do(func() {
			log.AddHandler(eLog, log.ErrorLevel, log.PanicLevel,
				log.AlertLevel, log.FatalLevel)
		})
	}
}

func format(e *email.Email) email.Formatter {
	return func(entry log.Entry) *gomail.Message {
		addr := config.Get().EmailErrMail
		msg := gomail.NewMessage()
		msg.SetHeader("From", addr)
		msg.SetHeader("To", addr)
		msg.SetHeader("Subject", "caselog error")
		msg.SetBody("text/plain", entry.Message)
		return msg
	}
}
