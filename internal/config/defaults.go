package config

const (
	defaultDataDir           = "~/.local/share/clipflow"
	defaultLogDir            = "~/.local/share/clipflow/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultRecorderTTL       = 240
	defaultEditorTTL         = 240
	defaultUploaderTTL       = 120
	defaultClaimTTL          = 240
	defaultWarnWindowMinutes = 30
	defaultSweepInterval     = 60
	defaultOverdueCheck      = 15
	defaultAlertDedupMinutes = 240
	defaultNotifyTimeout     = 10
	defaultAuditNATSSubject  = "clipflow.audit"
)

// Default returns a Config populated with repository defaults. SLA hours
// mirror the production turnaround targets: recording within 4h of becoming
// claimable, editing within 24h, posting within 8h of the edit landing.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Claims: Claims{
			RecorderTTLMinutes: defaultRecorderTTL,
			EditorTTLMinutes:   defaultEditorTTL,
			UploaderTTLMinutes: defaultUploaderTTL,
			DefaultTTLMinutes:  defaultClaimTTL,
		},
		SLA: SLA{
			StageHours: map[string]int{
				"generating_script": 1,
				"needs_script":      24,
				"not_recorded":      4,
				"recorded":          24,
				"ready_to_post":     8,
			},
			WarnWindowMinutes: defaultWarnWindowMinutes,
		},
		Priority: Priority{
			AgeWeight:   1.0,
			DueSoonBump: 500,
			OverdueBump: 1000,
			HighBump:    250,
			UrgentBump:  750,
		},
		Sweep: Sweep{
			IntervalSeconds:     defaultSweepInterval,
			OverdueCheckMinutes: defaultOverdueCheck,
			AlertDedupMinutes:   defaultAlertDedupMinutes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			ClaimExpired:   true,
			Overdue:        true,
			Reassigned:     true,
		},
		Audit: Audit{
			NATSSubject: defaultAuditNATSSubject,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
