package rpcclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/btcsuite/go-socks/socks"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/app/appmessage"
	"github.com/poolforge/poolcreator/infrastructure/logger"
)

const defaultTimeout = 30 * time.Second

// RPCClient is a JSON-RPC client of a ledger full node
type RPCClient struct {
	client *rpc.Client

	rpcAddress string
	timeout    time.Duration
}

// ProxyConfig configures a SOCKS5 proxy through which every request is sent
type ProxyConfig struct {
	Address  string
	Username string
	Password string
}

// NewRPCClient creates a new RPC client of the node at rpcAddress. A nil
// proxy dials the node directly.
func NewRPCClient(rpcAddress string, proxy *ProxyConfig) (*RPCClient, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != nil {
		socksProxy := &socks.Proxy{
			Addr:     proxy.Address,
			Username: proxy.Username,
			Password: proxy.Password,
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
			timeout := defaultTimeout
			deadline, ok := ctx.Deadline()
			if ok {
				timeout = time.Until(deadline)
			}
			return socksProxy.DialTimeout(network, address, timeout)
		}
	}

	client, err := rpc.DialOptions(context.Background(), rpcAddress,
		rpc.WithHTTPClient(&http.Client{Transport: transport}))
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to address %s", rpcAddress)
	}

	log.Infof("Using RPC server %s", rpcAddress)

	return &RPCClient{
		client:     client,
		rpcAddress: rpcAddress,
		timeout:    defaultTimeout,
	}, nil
}

// SetTimeout sets the timeout by which to wait for RPC responses
func (c *RPCClient) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Close closes the RPC client
func (c *RPCClient) Close() {
	c.client.Close()
}

// Address returns the address of the RPC server
func (c *RPCClient) Address() string {
	return c.rpcAddress
}

// ErrRPC is an error in the RPC protocol
var ErrRPC = errors.New("rpc error")

// ErrNetwork is a transport failure between the client and the RPC server
var ErrNetwork = errors.New("network error")

// NetworkError is a transport failure of one RPC call. It matches
// ErrNetwork and unwraps to its cause.
type NetworkError struct {
	Method string
	Err    error
}

func (e *NetworkError) Error() string {
	return e.Method + ": " + ErrNetwork.Error() + ": " + e.Err.Error()
}

// Is implements errors.Is
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// Unwrap returns the cause of the failure
func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (c *RPCClient) convertRPCError(method string, rpcError *appmessage.RPCError) error {
	return errors.Wrapf(ErrRPC, "%s: %s", method, rpcError)
}

func (c *RPCClient) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log.Tracef("Calling %s", method)
	err := c.client.CallContext(ctx, result, method, args...)
	if err == nil {
		return nil
	}

	var jsonRPCError rpc.Error
	if errors.As(err, &jsonRPCError) {
		return c.convertRPCError(method, appmessage.RPCErrorf(jsonRPCError.ErrorCode(), "%s", jsonRPCError.Error()))
	}
	log.Debugf("Transport failure calling %s: %s", method, err)
	return errors.WithStack(&NetworkError{Method: method, Err: err})
}

// SetLogger uses a specified Logger to output package logging info
func (c *RPCClient) SetLogger(backend *logger.Backend, level logger.Level) {
	const logSubsystem = "RPCC"
	log = backend.Logger(logSubsystem)
	log.SetLevel(level)
}
