// Package main is the entry point for the kubesecrets controllers.
package main

import (
	"flag"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/util/workqueue"
	ctrl "sigs.k8s.io/controller-runtime"
	crcontroller "sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	v1 "github.com/lukaszraczylo/kubesecrets/api/v1"
	"github.com/lukaszraczylo/kubesecrets/pkg/config"
	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/controller"
	"github.com/lukaszraczylo/kubesecrets/pkg/filter"
	"github.com/lukaszraczylo/kubesecrets/pkg/store"
	"github.com/lukaszraczylo/kubesecrets/pkg/template"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1.AddToScheme(scheme))
}

func main() {
	var (
		configFile           string
		metricsAddr          string
		probeAddr            string
		enableLeaderElection bool
		leaderElectionID     string
		excludedNamespaces   string
		includedNamespaces   string
		fieldManager         string
		retryInterval        time.Duration
		workerThreads        int
		enableSync           bool
		enableTemplate       bool
		dryRun               bool
		uncachedLists        bool
	)

	defaults := config.Default()

	flag.StringVar(&configFile, "config", "",
		"Path to a YAML configuration file. Command-line flags override values from the file.")
	flag.StringVar(&metricsAddr, "metrics-bind-address", defaults.MetricsBindAddress, "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", defaults.HealthProbeBindAddress, "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", defaults.LeaderElection.Enabled,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flag.StringVar(&leaderElectionID, "leader-election-id", defaults.LeaderElection.ResourceName,
		"The name of the leader election lease.")
	flag.StringVar(&excludedNamespaces, "excluded-namespaces", "",
		"Comma-separated list of namespaces that never receive propagated secrets (in addition to defaults).")
	flag.StringVar(&includedNamespaces, "included-namespaces", "",
		"Comma-separated list of namespace patterns propagation is restricted to (empty = all allowed).")
	flag.StringVar(&fieldManager, "field-manager", defaults.FieldManager,
		"Server-side apply field manager for propagated secrets.")
	flag.DurationVar(&retryInterval, "retry-interval", defaults.RetryInterval,
		"Fixed delay before a failed reconciliation is retried.")
	flag.IntVar(&workerThreads, "worker-threads", defaults.WorkerThreads,
		"Number of concurrent reconciliation workers per controller.")
	flag.BoolVar(&enableSync, "enable-sync", defaults.EnableSync,
		"Run the secret propagation controllers.")
	flag.BoolVar(&enableTemplate, "enable-template", defaults.EnableTemplate,
		"Run the SecretTemplate controllers.")
	flag.BoolVar(&dryRun, "dry-run", defaults.DryRun,
		"Log intended writes without applying them.")
	flag.BoolVar(&uncachedLists, "uncached-lists", defaults.UncachedLists,
		"List secrets and namespaces directly from the API server instead of the informer cache.")

	opts := zap.Options{
		Development: true,
		TimeEncoder: zapcore.ISO8601TimeEncoder,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	cfg := config.Default()
	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			setupLog.Error(err, "unable to load configuration", "path", configFile)
			os.Exit(1)
		}
	}

	// Explicitly set flags win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "metrics-bind-address":
			cfg.MetricsBindAddress = metricsAddr
		case "health-probe-bind-address":
			cfg.HealthProbeBindAddress = probeAddr
		case "leader-elect":
			cfg.LeaderElection.Enabled = enableLeaderElection
		case "leader-election-id":
			cfg.LeaderElection.ResourceName = leaderElectionID
		case "excluded-namespaces":
			cfg.ExcludedNamespaces = filter.ParseNamespaceList(excludedNamespaces)
		case "included-namespaces":
			cfg.IncludedNamespaces = filter.ParseNamespaceList(includedNamespaces)
		case "field-manager":
			cfg.FieldManager = fieldManager
		case "retry-interval":
			cfg.RetryInterval = retryInterval
		case "worker-threads":
			cfg.WorkerThreads = workerThreads
		case "enable-sync":
			cfg.EnableSync = enableSync
		case "enable-template":
			cfg.EnableTemplate = enableTemplate
		case "dry-run":
			cfg.DryRun = dryRun
		case "uncached-lists":
			cfg.UncachedLists = uncachedLists
		}
	})

	if err := cfg.Validate(); err != nil {
		setupLog.Error(err, "invalid configuration")
		os.Exit(1)
	}

	setupLog.Info("starting controllers",
		"name", constants.ControllerName,
		"version", "dev",
		"sync", cfg.EnableSync,
		"template", cfg.EnableTemplate,
		"workers", cfg.WorkerThreads,
		"retryInterval", cfg.RetryInterval,
		"dryRun", cfg.DryRun,
	)

	namespaceFilter, err := cfg.NamespaceFilter()
	if err != nil {
		setupLog.Error(err, "invalid namespace filter")
		os.Exit(1)
	}

	setupLog.Info("namespace filters configured",
		"excluded", cfg.AllExcludedNamespaces(),
		"included", cfg.IncludedNamespaces,
	)

	// Set up controller manager
	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: cfg.MetricsBindAddress,
		},
		HealthProbeBindAddress:  cfg.HealthProbeBindAddress,
		LeaderElection:          cfg.LeaderElection.Enabled,
		LeaderElectionID:        cfg.LeaderElection.ResourceName,
		LeaderElectionNamespace: cfg.LeaderElection.ResourceNamespace,
		LeaseDuration:           &cfg.LeaderElection.LeaseDuration,
		RenewDeadline:           &cfg.LeaderElection.RenewDeadline,
		RetryPeriod:             &cfg.LeaderElection.RetryPeriod,
	})
	if err != nil {
		setupLog.Error(err, "unable to create manager")
		os.Exit(1)
	}

	var secretStore *store.KubernetesStore
	if cfg.UncachedLists {
		secretStore = store.NewKubernetesStoreWithAPIReader(mgr.GetClient(), mgr.GetAPIReader())
	} else {
		secretStore = store.NewKubernetesStore(mgr.GetClient())
	}

	if cfg.EnableSync {
		syncer := &controller.Syncer{
			Store:        secretStore,
			Filter:       namespaceFilter,
			FieldManager: cfg.FieldManager,
			DryRun:       cfg.DryRun,
		}

		if err := (&controller.SecretSyncReconciler{
			Store:  secretStore,
			Syncer: syncer,
		}).SetupWithManager(mgr, controllerOptions(cfg)); err != nil {
			setupLog.Error(err, "unable to create controller", "controller", constants.SecretSyncControllerName)
			os.Exit(1)
		}

		if err := (&controller.NamespaceSyncReconciler{
			Store:  secretStore,
			Syncer: syncer,
		}).SetupWithManager(mgr, controllerOptions(cfg)); err != nil {
			setupLog.Error(err, "unable to create controller", "controller", constants.NamespaceSyncControllerName)
			os.Exit(1)
		}
	}

	if cfg.EnableTemplate {
		renderer := template.NewRenderer(secretStore)

		if err := (&controller.SecretTemplateReconciler{
			Store:    secretStore,
			Renderer: renderer,
			DryRun:   cfg.DryRun,
		}).SetupWithManager(mgr, controllerOptions(cfg)); err != nil {
			setupLog.Error(err, "unable to create controller", "controller", constants.SecretTemplateControllerName)
			os.Exit(1)
		}

		if err := (&controller.GeneratedSecretReconciler{
			Store:    secretStore,
			Renderer: renderer,
			DryRun:   cfg.DryRun,
		}).SetupWithManager(mgr, controllerOptions(cfg)); err != nil {
			setupLog.Error(err, "unable to create controller", "controller", constants.GeneratedSecretControllerName)
			os.Exit(1)
		}
	}

	// Add health checks
	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

// controllerOptions returns fresh options for one controller. Failed
// reconciliations are retried after a fixed delay rather than an exponential one.
func controllerOptions(cfg *config.Config) crcontroller.Options {
	return crcontroller.Options{
		MaxConcurrentReconciles: cfg.WorkerThreads,
		RateLimiter: workqueue.NewTypedItemExponentialFailureRateLimiter[reconcile.Request](
			cfg.RetryInterval, cfg.RetryInterval),
	}
}
