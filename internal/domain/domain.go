package domain

import "github.com/yungbote/overlay-backend/internal/domain/overlay"

type (
	Widget       = overlay.Widget
	Element      = overlay.Element
	ElementType  = overlay.ElementType
	Media        = overlay.Media
	ElementAsset = overlay.ElementAsset
	Dashboard    = overlay.Dashboard

	RegistrationError   = overlay.RegistrationError
	NotFoundError       = overlay.NotFoundError
	ValidationError     = overlay.ValidationError
	UnknownFeatureError = overlay.UnknownFeatureError
	InvalidFeatureError = overlay.InvalidFeatureError
	ExecutionError      = overlay.ExecutionError
)

const (
	ElementImage     = overlay.ElementImage
	ElementVideo     = overlay.ElementVideo
	ElementAudio     = overlay.ElementAudio
	ElementText      = overlay.ElementText
	ElementTimer     = overlay.ElementTimer
	ElementCounter   = overlay.ElementCounter
	ElementCard      = overlay.ElementCard
	ElementCanvas    = overlay.ElementCanvas
	ElementAnimation = overlay.ElementAnimation
)

var (
	ErrNotFound   = overlay.ErrNotFound
	ErrValidation = overlay.ErrValidation

	NotFound     = overlay.NotFound
	ElementTypes = overlay.ElementTypes
)

// DefaultRole is used when a media binding names no role.
const DefaultRole = "default"
