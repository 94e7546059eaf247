package queue

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nuohe369/redisqueue/pkg/redis"
)

// dsnScheme is the only scheme FromDSN accepts.
// dsnScheme 是 FromDSN 唯一接受的协议头。
const dsnScheme = "predis"

// FromDSN parses a DSN of the form
// predis://[user[:pass]@]host[:port][?k=v&...] into Options.
// host:port becomes dsn_list's first (and, for standalone, only)
// entry; cluster/sentinel topology is selected by the cluster /
// sentinel_master query keys.
//
// FromDSN 解析形如 predis://[user[:pass]@]host[:port][?k=v&...] 的 DSN 为
// Options。host:port 成为 dsn_list 的第一个（单机模式下唯一的）条目；
// cluster / sentinel_master 查询参数选择集群/哨兵拓扑。
func FromDSN(dsn string) (Options, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Options{}, configErrorf(err, "invalid DSN %q", dsn)
	}
	if u.Scheme != dsnScheme {
		return Options{}, configError("invalid DSN %q: scheme must be %q", dsn, dsnScheme+":")
	}

	q := u.Query()
	o, err := NewOptions(func(o *Options) { o.Topology.Addr = u.Host })
	if err != nil {
		return Options{}, err
	}

	if u.User != nil {
		o.Topology.Username = u.User.Username()
		if pass, ok := u.User.Password(); ok {
			o.Topology.Password = pass
		}
	}

	if v := q.Get("cluster"); v != "" {
		o.Topology.Mode = redis.ModeCluster
		o.Topology.ClusterAddrs = joinHostAnd(u.Host, v)
	} else if q.Get("sentinel_master") != "" || q.Get("sentinels") != "" {
		o.Topology.Mode = redis.ModeSentinel
		o.Topology.MasterName = q.Get("sentinel_master")
		o.Topology.SentinelAddrs = joinHostAnd(u.Host, q.Get("sentinels"))
	} else {
		o.Topology.Mode = redis.ModeStandalone
		o.Topology.Addr = u.Host
	}

	if v := q.Get("stream"); v != "" {
		o.Stream = v
	}
	if v := q.Get("group"); v != "" {
		o.Group = v
	}
	if v := q.Get("consumer"); v != "" {
		o.Consumer = v
	}
	if v := q.Get("auto_setup"); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid auto_setup value %q", v)
		}
		o.AutoSetup = b
	}
	if v := q.Get("delete_after_ack"); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid delete_after_ack value %q", v)
		}
		o.DeleteAfterAck = b
	}
	if v := q.Get("delete_after_reject"); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid delete_after_reject value %q", v)
		}
		o.DeleteAfterReject = b
	}
	if v := q.Get("stream_max_entries"); v != "" {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid stream_max_entries value %q", v)
		}
		o.StreamMaxEntries = n
	}
	if v := q.Get("db_index"); v != "" {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid db_index value %q", v)
		}
		o.Topology.DB = n
	}
	if v := q.Get("redeliver_timeout"); v != "" {
		n, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid redeliver_timeout value %q", v)
		}
		o.RedeliverTimeout = time.Duration(n * float64(time.Second))
	}
	if v := q.Get("claim_interval"); v != "" {
		n, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid claim_interval value %q", v)
		}
		o.ClaimInterval = time.Duration(n * float64(time.Millisecond))
	}
	if v := q.Get("timeout"); v != "" {
		n, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid timeout value %q", v)
		}
		o.Timeout = time.Duration(n * float64(time.Second))
		o.Topology.Timeout = o.Timeout
	}
	if v := q.Get("read_timeout"); v != "" {
		n, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid read_timeout value %q", v)
		}
		o.ReadTimeout = time.Duration(n * float64(time.Second))
		o.Topology.ReadTimeout = o.ReadTimeout
	}
	if v := q.Get("sentinel_retry_limit"); v != "" {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid sentinel_retry_limit value %q", v)
		}
		o.SentinelRetryLimit = n
		o.Topology.SentinelRetryLimit = n
	}
	if v := q.Get("sentinel_retry_wait"); v != "" {
		n, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return Options{}, configErrorf(perr, "invalid sentinel_retry_wait value %q", v)
		}
		o.SentinelRetryWait = time.Duration(n * float64(time.Millisecond))
		o.Topology.SentinelRetryWait = o.SentinelRetryWait
	}

	if err := o.validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// joinHostAnd prepends host to a comma-separated list of additional
// addresses found in a query key, producing the full dsn_list.
// joinHostAnd 将 host 前置到查询参数中逗号分隔的附加地址列表，拼出完整的
// dsn_list。
func joinHostAnd(host, rest string) string {
	if host == "" {
		return rest
	}
	if rest == "" {
		return host
	}
	return host + "," + rest
}

// splitDSNList splits a comma-separated host list, trimming whitespace
// and dropping empty entries.
// splitDSNList 按逗号切分主机列表，去除空白并丢弃空条目。
func splitDSNList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
