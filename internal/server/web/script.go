package web

const apiScript = `
async function api(method, url, body, headers) {
  const res = await fetch(url, {
    method: method,
    credentials: "same-origin",
    headers: Object.assign({"Content-Type": "application/json"}, headers || {}),
    body: body === undefined ? undefined : JSON.stringify(body),
  });
  const data = await res.json().catch(() => ({}));
  if (!res.ok) throw new Error(data.error || res.statusText);
  return data;
}
function showError(err) {
  const el = document.getElementById("form-error");
  el.textContent = err.message;
  el.hidden = false;
}
function formValues(form) {
  return Object.fromEntries(new FormData(form).entries());
}
`

const signInScript = apiScript + `
document.getElementById("signin-form").addEventListener("submit", async (e) => {
  e.preventDefault();
  const v = formValues(e.target);
  try {
    const tok = await api("POST", "/api/auth/token", {email: v.email, password: v.password});
    const res = await api("POST", "/api/auth/signin", {email: v.email}, {Authorization: "Bearer " + tok.idToken});
    window.location.assign(res.redirectUrl || "/");
  } catch (err) { showError(err); }
});
`

const signUpScript = apiScript + `
document.getElementById("signup-form").addEventListener("submit", async (e) => {
  e.preventDefault();
  try {
    await api("POST", "/api/auth/signup", formValues(e.target));
    window.location.assign("/signin");
  } catch (err) { showError(err); }
});
`

const contactScript = apiScript + `
document.getElementById("contact-form").addEventListener("submit", async (e) => {
  e.preventDefault();
  try {
    const res = await api("POST", "/api/contact", formValues(e.target));
    e.target.reset();
    const ok = document.getElementById("form-success");
    ok.textContent = res.message;
    ok.hidden = false;
  } catch (err) { showError(err); }
});
`

const signOutScript = `
document.getElementById("signout").addEventListener("click", async () => {
  await fetch("/api/auth/signout", {method: "POST", credentials: "same-origin"});
  window.location.assign("/");
});
`

const usersScript = apiScript + `
function showError(err) { alert(err.message); }
document.getElementById("users").addEventListener("click", async (e) => {
  const action = e.target.dataset.action;
  if (!action || action === "role") return;
  const id = e.target.closest("tr").dataset.userId;
  try {
    if (action === "toggle") {
      await api("PUT", "/api/users/" + id, {disabled: e.target.dataset.disabled === "true"});
    } else if (action === "delete") {
      if (!confirm("Delete this user?")) return;
      await api("DELETE", "/api/users/" + id);
    }
    window.location.reload();
  } catch (err) { showError(err); }
});
document.getElementById("users").addEventListener("change", async (e) => {
  if (e.target.dataset.action !== "role") return;
  const id = e.target.closest("tr").dataset.userId;
  try {
    await api("PATCH", "/api/users/" + id, {role: e.target.value});
  } catch (err) { showError(err); window.location.reload(); }
});
`

const inboxScript = apiScript + `
function showError(err) { alert(err.message); }
const table = document.getElementById("messages");
if (table) table.addEventListener("click", async (e) => {
  const action = e.target.dataset.action;
  if (!action) return;
  const id = e.target.closest("tr").dataset.messageId;
  try {
    if (action === "delete") {
      if (!confirm("Delete this message?")) return;
      await api("DELETE", "/api/messages/" + id);
    } else if (action === "archive") {
      await api("PATCH", "/api/messages/" + id, {isArchived: e.target.dataset.archived === "true"});
    } else {
      await api("PATCH", "/api/messages/" + id, {status: action});
    }
    window.location.reload();
  } catch (err) { showError(err); }
});
(function live() {
  const proto = window.location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + window.location.host + "/api/messages/live");
  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    if (msg.type === "unread") document.getElementById("unread-count").textContent = msg.count;
  };
  ws.onclose = () => setTimeout(live, 5000);
})();
`
