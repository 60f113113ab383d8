package embedh

type loaderData struct {
	ConfigURL       string
	PollIntervalMs  int
	PollMaxAttempts int
}

// loaderTemplate is the bootstrap script customers paste into their site.
// It stays tiny: read the tenant key off its own tag, fetch config, pull
// in the widget bundle, hand over.
const loaderTemplate = `(function() {
  'use strict';

  var script = document.currentScript;
  if (!script) {
    var tags = document.querySelectorAll('script[src*="loader.js"][data-account-id]');
    script = tags.length ? tags[tags.length - 1] : null;
  }
  if (!script) {
    console.warn('[herald] loader: could not locate own script tag');
    return;
  }

  var accountId = script.getAttribute('data-account-id');
  if (!accountId) {
    console.warn('[herald] loader: data-account-id attribute is required');
    return;
  }

  function buildConfigUrl() {
    return '{{.ConfigURL}}'
      + '?account_id=' + encodeURIComponent(accountId)
      + '&url=' + encodeURIComponent(window.location.href)
      + '&path=' + encodeURIComponent(window.location.pathname);
  }

  var container = null;
  var lastConfig = null;

  function whenBodyReady(fn) {
    if (document.body) { fn(); return; }
    document.addEventListener('DOMContentLoaded', fn);
  }

  function widgetReady() {
    return window.HeraldWidget && typeof window.HeraldWidget.init === 'function';
  }

  function fetchConfig() {
    return window.fetch(buildConfigUrl()).then(function(response) {
      if (!response.ok) {
        throw new Error('config request failed: ' + response.status);
      }
      return response.json();
    });
  }

  function boot(config) {
    whenBodyReady(function() {
      if (!container) {
        container = document.createElement('div');
        container.setAttribute('data-herald-widget', '');
        document.body.appendChild(container);
      }

      if (widgetReady()) {
        window.HeraldWidget.init(config, container);
        return;
      }

      var widgetTag = document.createElement('script');
      widgetTag.async = true;
      widgetTag.src = config.widgetUrl;

      var attempts = 0;
      var timer = setInterval(function() {
        attempts++;
        if (widgetReady()) {
          clearInterval(timer);
          window.HeraldWidget.init(config, container);
          return;
        }
        if (attempts >= {{.PollMaxAttempts}}) {
          clearInterval(timer);
          console.warn('[herald] loader: widget bundle did not initialize');
        }
      }, {{.PollIntervalMs}});

      widgetTag.addEventListener('error', function() {
        clearInterval(timer);
        console.warn('[herald] loader: widget bundle failed to load');
      });
      document.head.appendChild(widgetTag);
    });
  }

  function handleConfig(config) {
    lastConfig = config;
    window.Herald.version = (config && config.version) || '';
    if (widgetReady() && container) {
      window.HeraldWidget.update(config);
      return;
    }
    if (config && config.announcements && config.announcements.length) {
      boot(config);
    }
  }

  function recheck() {
    fetchConfig()
      .then(handleConfig)
      .catch(function(error) {
        console.warn('[herald] loader: ' + error.message);
      });
  }

  window.Herald = {
    recheck: recheck,
    getConfig: function() { return lastConfig; },
    version: ''
  };

  recheck();
})();
`

type widgetData struct {
	SeenKeyPrefix string
	RootClass     string
}

// widgetTemplate is the widget runtime bundle. All rendering happens
// inside a closed shadow root; each render pass rebuilds the markup
// wholesale instead of patching it.
const widgetTemplate = `(function() {
  'use strict';

  var SEEN_PREFIX = '{{.SeenKeyPrefix}}';
  var ROOT_CLASS = '{{.RootClass}}';

  var roots = new WeakMap();

  var BASE_CSS = '' +
    '.' + ROOT_CLASS + '{font-family:var(--hw-typography-font-family,system-ui,sans-serif);}' +
    '.hw-item{background:var(--hw-modal-background,#ffffff);color:var(--hw-modal-text-color,#1a1a2e);' +
      'border-radius:var(--hw-modal-border-radius,8px);box-shadow:0 4px 24px rgba(0,0,0,.12);' +
      'padding:var(--hw-spacing-padding,20px);margin:8px;max-width:420px;pointer-events:auto;}' +
    '.hw-title{font-weight:600;font-size:16px;margin:0 0 8px;}' +
    '.hw-message{font-size:14px;line-height:1.5;}' +
    '.hw-buttons{display:flex;gap:8px;justify-content:flex-end;margin-top:16px;}' +
    '.hw-button{border:0;border-radius:6px;padding:8px 14px;font-size:13px;cursor:pointer;}' +
    '.hw-button-primary{background:var(--hw-button-background,#4f46e5);color:var(--hw-button-text-color,#ffffff);}' +
    '.hw-button-secondary{background:var(--hw-secondary-button-background,transparent);' +
      'color:var(--hw-secondary-button-text-color,#4f46e5);border:1px solid currentColor;}' +
    '.hw-placement-modal{position:fixed;inset:0;display:flex;align-items:center;justify-content:center;' +
      'background:rgba(15,23,42,.4);z-index:2147483000;}' +
    '.hw-placement-banner{position:fixed;top:0;left:0;right:0;display:flex;justify-content:center;z-index:2147483000;}' +
    '.hw-placement-toast{position:fixed;bottom:16px;right:16px;z-index:2147483000;}' +
    '.hw-placement-tooltip{position:fixed;bottom:16px;left:16px;z-index:2147483000;}';

  function kebab(name) {
    return name.replace(/[A-Z]/g, function(ch) { return '-' + ch.toLowerCase(); });
  }

  // Legacy groups first so grouped tokens win when both shapes carry the
  // same property.
  var GROUP_ORDER = [
    ['colors', 'colors'], ['typography', 'typography'], ['spacing', 'spacing'],
    ['modal', 'modal'], ['button', 'button'], ['secondaryButton', 'secondary-button']
  ];

  function themeVars(theme) {
    if (!theme) { return ''; }
    var out = '';
    GROUP_ORDER.forEach(function(entry) {
      var tokens = theme[entry[0]];
      if (!tokens) { return; }
      Object.keys(tokens).sort().forEach(function(key) {
        out += '--hw-' + entry[1] + '-' + kebab(key) + ':' + tokens[key] + ';';
      });
    });
    return out;
  }

  // Fallback chain: explicit theme id, then the first theme in the
  // config, then the built-in defaults.
  function resolveTheme(config, a) {
    var themes = (config && config.themes) || [];
    if (a.themeId) {
      for (var i = 0; i < themes.length; i++) {
        if (themes[i].id === a.themeId) { return themes[i].config; }
      }
    }
    return themes.length ? themes[0].config : null;
  }

  function storageFor(frequency) {
    try {
      if (frequency === 'once_per_session') { return window.sessionStorage; }
      if (frequency === 'once_per_user') { return window.localStorage; }
    } catch (e) { /* storage blocked, treat as always */ }
    return null;
  }

  function isSeen(a) {
    var store = storageFor(a.frequency);
    return store ? store.getItem(SEEN_PREFIX + a.id) !== null : false;
  }

  function markSeen(a) {
    var store = storageFor(a.frequency);
    if (store) {
      try { store.setItem(SEEN_PREFIX + a.id, String(Date.now())); } catch (e) { /* quota */ }
    }
  }

  function State(config, container, root) {
    this.config = config;
    this.container = container;
    this.root = root;
    this.visible = {};
  }

  State.prototype.renderPass = function(exclude) {
    exclude = exclude || {};
    var state = this;
    var visible = (this.config.announcements || []).filter(function(a) {
      return !exclude[a.id] && !isSeen(a);
    });

    this.visible = {};
    visible.forEach(function(a) { state.visible[a.id] = a; });

    if (!visible.length) {
      this.root.innerHTML = '';
      return;
    }

    var byPlacement = {};
    visible.forEach(function(a) {
      (byPlacement[a.placement] = byPlacement[a.placement] || []).push(a);
    });

    var html = '<style>' + BASE_CSS + '</style>';
    ['modal', 'banner', 'toast', 'tooltip'].forEach(function(placement) {
      var group = byPlacement[placement];
      if (!group) { return; }
      html += '<div class="' + ROOT_CLASS + ' hw-placement-' + placement + '">';
      group.forEach(function(a) { html += state.itemHTML(a); });
      html += '</div>';
    });

    this.root.innerHTML = html;
    this.bind();
  };

  State.prototype.itemHTML = function(a) {
    var el = document.createElement('div');
    function esc(text) {
      el.textContent = text;
      return el.innerHTML.replace(/"/g, '&quot;');
    }

    var html = '<div class="hw-item" style="' + themeVars(resolveTheme(this.config, a)) + '" data-hw-id="' + a.id + '">';
    html += '<p class="hw-title">' + esc(a.title) + '</p>';
    html += '<div class="hw-message">' + (a.message || '') + '</div>';

    var buttons = (a.buttons || []).slice().sort(function(x, y) {
      if (x.type === y.type) { return 0; }
      return x.type === 'primary' ? 1 : -1;
    });
    if (buttons.length) {
      html += '<div class="hw-buttons">';
      buttons.forEach(function(b) {
        html += '<button class="hw-button hw-button-' + esc(b.type) + '"'
          + ' data-hw-action="' + esc(b.action) + '"'
          + (b.url ? ' data-hw-url="' + esc(b.url) + '"' : '')
          + '>' + esc(b.label) + '</button>';
      });
      html += '</div>';
    }
    return html + '</div>';
  };

  State.prototype.bind = function() {
    var state = this;
    this.root.querySelectorAll('.hw-button').forEach(function(btn) {
      btn.addEventListener('click', function() {
        var action = btn.getAttribute('data-hw-action');
        if (action === 'redirect') {
          var url = btn.getAttribute('data-hw-url');
          if (url) { window.open(url, '_blank', 'noopener'); }
          return;
        }
        state.close();
      });
    });
  };

  State.prototype.dismiss = function(id) {
    var a = this.visible[id];
    if (a) { markSeen(a); }
    var exclude = {};
    exclude[id] = true;
    this.renderPass(exclude);
  };

  State.prototype.close = function() {
    var exclude = {};
    for (var id in this.visible) {
      exclude[id] = true;
      markSeen(this.visible[id]);
    }
    this.renderPass(exclude);
  };

  var current = null;

  window.HeraldWidget = {
    init: function(config, container) {
      if (!config || !container) { return; }
      var root = roots.get(container);
      if (!root) {
        root = container.attachShadow({ mode: 'closed' });
        roots.set(container, root);
      }
      current = new State(config, container, root);
      current.renderPass();
    },
    update: function(config) {
      if (!current || !config) { return; }
      current.config = config;
      current.renderPass();
    },
    show: function() { if (current) { current.renderPass(); } },
    dismiss: function(id) { if (current) { current.dismiss(id); } },
    close: function() { if (current) { current.close(); } },
    destroy: function() {
      if (!current) { return; }
      current.root.innerHTML = '';
      if (current.container.parentNode) {
        current.container.parentNode.removeChild(current.container);
      }
      current = null;
    }
  };
})();
`
