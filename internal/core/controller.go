package core

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Controller holds the current Session for callers that act on it from
// several goroutines. Every action holds the lock for its whole duration,
// so at most one transform is in flight per controller.
type Controller struct {
	mu      sync.Mutex
	session Session
	logger  logrus.FieldLogger
}

func NewController(logger logrus.FieldLogger) *Controller {
	return &Controller{logger: logger}
}

// Session returns the current session value
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Load replaces the session with a new one built around img
func (c *Controller) Load(img Image, path string) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Load(img, path)
	if err != nil {
		c.logger.WithError(err).WithField("filepath", path).Error("Rejected image")
		return c.session, err
	}

	c.session = next
	c.logger.WithFields(logrus.Fields{
		"session_id": next.ID(),
		"filepath":   path,
		"size":       img.String(),
	}).Info("Session started")
	return next, nil
}

// Apply runs t against the original image of the current session
func (c *Controller) Apply(t Transformer) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.logger.WithFields(logrus.Fields{
		"session_id": c.session.ID(),
		"transform":  t.Name(),
	})

	start := time.Now()
	next, err := c.session.Apply(t)
	if err != nil {
		if IsWarning(err) {
			log.WithError(err).Warn("Transform skipped")
		} else {
			log.WithError(err).Error("Transform failed")
		}
		return c.session, err
	}

	c.session = next
	processed := next.processed
	log.WithFields(logrus.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
		"output":      processed.String(),
	}).Info("Transform applied")
	return next, nil
}

// Reset discards the processed image
func (c *Controller) Reset() (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.session.Reset()
	if err != nil {
		return c.session, err
	}
	c.session = next
	c.logger.WithField("session_id", next.ID()).Info("Reset to original image")
	return next, nil
}
