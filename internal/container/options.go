package container

// Options are read by humacli from flags and SERVICE_* environment variables.
type Options struct {
	Port          int    `default:"8888"                                help:"Port to listen on"                                        short:"p"`
	Domain        string `default:"eg.org"                              help:"Domain short URLs are issued under"                       short:"d"`
	Alphabet      string `default:"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" help:"Characters short codes are drawn from"`
	CodeLength    int    `default:"8"                                   help:"Length of generated short codes"                          short:"c"`
	MaxAttempts   int    `default:"100"                                 help:"Salted attempts before giving up on a collision"`
	Schemes       string `default:"http,https"                          help:"Comma-separated URL schemes accepted for shortening"`
	DefaultScheme string `default:"https"                               help:"Scheme used for redirects without X-Forwarded-Proto"`
	Store         string `default:"memory"                              help:"Mapping store: memory, redis or postgres"`
	RedisAddr     string `default:"localhost:6379"                      help:"Redis server address (Redis 7.0+, SET NX GET)"             short:"r"`
	DatabaseURL   string `default:"postgres://localhost:5432/shortlink" help:"PostgreSQL connection URL"`
	Migrate       bool   `default:"true"                                help:"Apply database migrations on start"`
	CacheTTL      int    `default:"0"                                   help:"Redis read cache TTL in seconds for the postgres store (0 disables)"`
	Events        string `default:"gochannel"                           help:"Mapping event transport: gochannel (in-process) or redisstream"`
	LogFormat     string `default:"console"                             help:"Log output format: console or json"`
}

// CacheEnabled reports whether reads go through the redis cache.
func (o *Options) CacheEnabled() bool {
	return o.Store == "postgres" && o.CacheTTL > 0
}

// InProcessEvents reports whether mapping events stay inside the server process.
func (o *Options) InProcessEvents() bool {
	return o.Events != "redisstream"
}
