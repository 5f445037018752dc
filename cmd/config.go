package cmd

// Config carries the environment-sourced settings of the custody service.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// ConservationTolerancePercent is the relative shortfall the conservation
	// engine tolerates before requiring a documented loss reason, e.g. "0.5".
	ConservationTolerancePercent string

	// ProjectionBatchSize caps the events one balance projection tick folds.
	ProjectionBatchSize int
}
