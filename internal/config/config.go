package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, uint64 for amounts in the smallest currency unit.
type Config struct {
    Env              string // application environment (e.g. "dev", "prod")
    Port             string // HTTP port to listen on
    DBUser           string // database username
    DBPass           string // database password (optional)
    DBHost           string // database host address
    DBPort           string // database port number
    DBName           string // database name
    JWTSecret        string // secret used to sign JWTs
    AccessTTLMin     int    // access token time‑to‑live in minutes
    RefreshTTLDays   int    // refresh token time‑to‑live in days
    BcryptCost       int    // bcrypt cost for password hashing
    ListingPrice     uint64 // default marketplace listing fee in units
    FaucetUnits      uint64 // balance granted to newly registered traders
    OperatorEmail    string // email of the operator account ensured at startup
    OperatorPassword string // password of the operator account
    MarketEmail      string // email of the internal custody account
    CollectionName   string // name of the default collection ensured at startup
    CollectionSymbol string // symbol of the default collection
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Marketplace
// parameters fall back to the historical contract defaults.
func Load() Config {
    return Config{
        Env:              must("APP_ENV"),
        Port:             must("APP_PORT"),
        DBUser:           must("DB_USER"),
        DBPass:           os.Getenv("DB_PASS"), // empty allowed
        DBHost:           must("DB_HOST"),
        DBPort:           must("DB_PORT"),
        DBName:           must("DB_NAME"),
        JWTSecret:        must("JWT_SECRET"),
        AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays:   mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:       mustInt("BCRYPT_COST"),
        ListingPrice:     envUint("LISTING_PRICE_UNITS", 1),
        FaucetUnits:      envUint("FAUCET_UNITS", 1000),
        OperatorEmail:    must("OPERATOR_EMAIL"),
        OperatorPassword: must("OPERATOR_PASSWORD"),
        MarketEmail:      getenv("MARKET_EMAIL", "market@system"),
        CollectionName:   getenv("COLLECTION_NAME", "Forge Finance Token"),
        CollectionSymbol: getenv("COLLECTION_SYMBOL", "FFT"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// envUint reads an optional unsigned amount, falling back to def when the
// variable is unset or malformed.
func envUint(key string, def uint64) uint64 {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.ParseUint(v, 10, 64)
    if err != nil {
        log.Fatalf("invalid uint for %s: %q", key, v)
    }
    return n
}
