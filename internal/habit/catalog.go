package habit

import "time"

// Defaults returns the built-in habit set with calibrated thresholds. The
// posture, fatigue and phone habits ship disabled; they are coarser
// heuristics than the core set and are opt-in.
func Defaults() []Config {
	return []Config{
		{
			ID: MouthBreathing, Kind: KindSustained, Enabled: true,
			Threshold: 0.05, Above: true, DebounceFrames: 120,
			Cooldown: time.Minute, Severity: SeverityNormal,
			Message: "Close your mouth! Breathe through your nose.",
		},
		{
			ID: BlinkRate, Kind: KindBlink, Enabled: true,
			Threshold: 0.15, Window: time.Minute, MinEvents: 6,
			Cooldown: time.Minute, Severity: SeverityNormal,
			Message: "Blink more! You're not blinking enough.",
		},
		{
			ID: EyeRubbing, Kind: KindWindow, Enabled: true,
			Threshold: 0.02, Above: false, MaxEvents: 3, Window: 30 * time.Second,
			Cooldown: time.Minute, Severity: SeverityNormal,
			Message: "Stop rubbing your eyes! This can cause irritation.",
		},
		{
			ID: FaceTouching, Kind: KindWindow, Enabled: true,
			Threshold: 1.0, Above: false, OvalRX: 0.12, OvalRY: 0.35,
			MaxEvents: 5, Window: 2 * time.Minute,
			Cooldown: time.Minute, Severity: SeverityNormal,
			Message: "Stop touching your face! Reduce stress and hygiene risk.",
		},
		{
			ID: Hydration, Kind: KindInterval, Enabled: true,
			Interval: 45 * time.Minute,
			Cooldown: time.Minute, Severity: SeverityNormal,
			Message: "Time to hydrate! Drink some water.",
		},
		{
			ID: Fatigue, Kind: KindWindow, Enabled: false,
			Threshold: 0.6, Above: true, EventFrames: 20,
			MaxEvents: 3, Window: 5 * time.Minute,
			Cooldown: time.Minute, Severity: SeverityNormal,
			Message: "You look tired! Consider taking a break.",
		},
		{
			ID: Posture, Kind: KindSustained, Enabled: false,
			Threshold: 1.0, Above: true, DebounceFrames: 90,
			PostureWidth: 0.35, PostureTilt: 15,
			Cooldown: time.Minute, Severity: SeverityNormal,
			Message: "Adjust your posture! Sit back and straighten your head.",
		},
		{
			ID: PhoneDistraction, Kind: KindSustained, Enabled: false,
			Threshold: 0.15, Above: true, DebounceFrames: 90,
			Cooldown: time.Minute, Severity: SeverityNormal,
			Message: "Put your phone away! Focus on your work.",
		},
	}
}
