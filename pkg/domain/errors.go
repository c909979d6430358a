package domain

import "errors"

// ErrSessionNotFound is returned when a terminal identity has no live session.
var ErrSessionNotFound = errors.New("session not found")

// ErrMalformedTopic is returned when a subscription topic is missing the
// /app/ or /node/ marker.
var ErrMalformedTopic = errors.New("malformed subscription topic")

// ErrNoChannel is returned when a delivery is attempted for a device with no
// registered channel.
var ErrNoChannel = errors.New("no channel registered for device")

// ErrIncidentService is returned when the incident collaborator itself fails
// while rendering a caught failure.
var ErrIncidentService = errors.New("incident service failure")
