package web

// indexHTML is the single-page shell. It renders the tree, the landing page,
// documents, and the command palette from the JSON API.
var indexHTML = []byte(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>docsite</title>
<style>
body { margin: 0; font: 15px/1.6 system-ui, sans-serif; display: flex; min-height: 100vh; color: #1f2328; }
nav { width: 260px; border-right: 1px solid #e5e7eb; padding: 16px; overflow-y: auto; }
nav h3 { font-size: 13px; text-transform: uppercase; color: #6b7280; margin: 16px 0 4px; }
nav a { display: block; padding: 2px 0; color: inherit; text-decoration: none; }
nav a:hover { color: #2563eb; }
main { flex: 1; padding: 24px 40px; max-width: 860px; }
.cards { display: grid; grid-template-columns: repeat(3, 1fr); gap: 12px; }
.card { border: 1px solid #e5e7eb; border-radius: 8px; padding: 12px; color: inherit; text-decoration: none; }
.widget { border: 1px dashed #93c5fd; border-radius: 8px; padding: 12px; margin: 12px 0; color: #1d4ed8; }
#palette { position: fixed; inset: 10% 25% auto; background: #fff; border: 1px solid #d1d5db; border-radius: 10px; box-shadow: 0 10px 30px rgba(0,0,0,.15); display: none; }
#palette input { width: 100%; box-sizing: border-box; border: 0; border-bottom: 1px solid #e5e7eb; padding: 12px; font-size: 16px; outline: none; }
#palette ul { list-style: none; margin: 0; padding: 4px; max-height: 50vh; overflow-y: auto; }
#palette li { padding: 6px 10px; border-radius: 6px; cursor: pointer; }
#palette li.sel { background: #eff6ff; }
#palette .group { font-size: 12px; color: #6b7280; padding: 6px 10px 2px; cursor: default; }
mark { background: #fde68a; }
</style>
</head>
<body>
<nav id="tree"></nav>
<main id="main"></main>
<div id="palette"><input id="q" placeholder="Search docs (Ctrl+K)" autocomplete="off"><ul id="results"></ul></div>
<script>
const $ = (id) => document.getElementById(id);
const esc = (s) => String(s ?? "").replace(/[&<>"']/g, (c) => ({"&":"&amp;","<":"&lt;",">":"&gt;","\"":"&quot;","'":"&#39;"}[c]));
let entries = [], selected = -1, timer = null, seq = 0, debounceMS = 200;

async function api(path, opts) {
  const res = await fetch(path, opts);
  if (!res.ok) throw new Error((await res.json()).error || res.statusText);
  return res.json();
}

async function loadTree() {
  const tree = await api("/api/tree");
  $("tree").innerHTML = '<a href="#/"><b>Home</b></a>' + tree.sections.map((s) =>
    "<h3>" + esc(s.label) + "</h3>" + s.items.map((it) =>
      '<a href="#/docs/' + encodeURIComponent(s.id) + "/" + encodeURIComponent(it.id) + '">' + esc(it.label) + "</a>").join("")).join("");
}

async function showHome() {
  const home = await api("/api/home");
  const cards = home.quick_start.map((c) => '<a class="card" href="#' + esc(c.href) + '"><b>' + esc(c.title) + "</b><br>" + esc(c.description) + "</a>").join("");
  const updates = home.recent_updates.map((u) => '<li><a href="#' + esc(u.href) + '">' + esc(u.title) + "</a> " + esc(u.status) + " " + esc(u.description) + "</li>").join("");
  $("main").innerHTML = "<h1>Quick start</h1><div class=cards>" + cards + "</div>" + (updates ? "<h2>Recent updates</h2><ul>" + updates + "</ul>" : "");
}

async function showDoc(section, file) {
  const page = await api("/api/docs/" + encodeURIComponent(section) + "/" + encodeURIComponent(file));
  $("main").innerHTML = page.segments.map((s) => s.kind === "widget"
    ? '<div class="widget">&lt;' + esc(s.widget_type) + "&gt;" + (s.has_table ? "<pre>" + esc(s.table) + "</pre>" : "") + "</div>"
    : s.html).join("");
}

function route() {
  const m = location.hash.match(/^#\/docs\/([^/]+)\/([^/]+)/);
  const p = m ? showDoc(decodeURIComponent(m[1]), decodeURIComponent(m[2])) : showHome();
  p.catch((e) => { $("main").innerHTML = "<p>" + esc(e.message) + "</p>"; });
}

function render(groups) {
  entries = [];
  $("results").innerHTML = groups.map(([label, items]) => (label && items.length ? '<li class="group">' + label + "</li>" : "") +
    items.map((it) => { entries.push(it.item || it); const i = entries.length - 1;
      return '<li data-i="' + i + '">' + (it.title_html || esc(it.title)) + "</li>"; }).join("")).join("");
  select(-1);
}

function select(i) {
  selected = i;
  document.querySelectorAll("#results li[data-i]").forEach((li) => li.classList.toggle("sel", Number(li.dataset.i) === i));
}

// Only the response to the latest request is rendered.
async function search() {
  const mine = ++seq;
  const q = $("q").value.trim();
  const data = await api("/api/search?q=" + encodeURIComponent(q));
  if (mine !== seq) return;
  render(q ? [["", data.results]] : [["Latest", data.view.latest], ["Recent", data.view.recent]]);
}

function queryChanged() {
  clearTimeout(timer);
  seq++;
  render([]);
  if ($("q").value.trim() === "") { search(); return; }
  timer = setTimeout(search, debounceMS);
}

function open(item) {
  if (!item) return;
  api("/api/recent", {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify({id: item.id})}).catch(() => {});
  closePalette();
  location.hash = "#" + item.href;
}

function openPalette() { $("palette").style.display = "block"; $("q").value = ""; $("q").focus(); search(); }
function closePalette() { clearTimeout(timer); seq++; $("palette").style.display = "none"; }

$("q").addEventListener("input", queryChanged);
$("results").addEventListener("click", (e) => { const i = e.target.closest("li")?.dataset.i; if (i !== undefined) open(entries[Number(i)]); });
document.addEventListener("keydown", (e) => {
  if ((e.ctrlKey || e.metaKey) && e.key === "k") { e.preventDefault(); openPalette(); return; }
  if ($("palette").style.display !== "block") return;
  if (e.key === "ArrowDown") { e.preventDefault(); select(Math.min(selected + 1, entries.length - 1)); }
  else if (e.key === "ArrowUp") { e.preventDefault(); select(Math.max(selected - 1, -1)); }
  else if (e.key === "Enter") { e.preventDefault(); open(entries[selected < 0 ? 0 : selected]); }
  else if (e.key === "Escape") { closePalette(); }
});
window.addEventListener("hashchange", route);
api("/api/config").then((c) => { debounceMS = c.debounce_ms || debounceMS; }).catch(() => {});
loadTree().then(route);
</script>
</body>
</html>
`)
